package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cashier/service"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.WithError(err).Error("Failed to encode response")
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyProcessed):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInsufficientBalance):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.WithError(err).Error("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
