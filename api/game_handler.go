package api

import (
	"encoding/json"
	"net/http"

	"cashier/service"
	"github.com/go-playground/validator/v10"
)

// GameHandler serves the bet placement route
type GameHandler struct {
	betting  service.BettingService
	validate *validator.Validate
}

// NewGameHandler creates a new game handler
func NewGameHandler(betting service.BettingService) *GameHandler {
	return &GameHandler{
		betting:  betting,
		validate: validator.New(),
	}
}

// PlayRound handles POST /api/games/play
func (h *GameHandler) PlayRound(w http.ResponseWriter, r *http.Request) {
	var dto playRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.betting.PlayRound(r.Context(), Subject(r.Context()), dto.GameID, dto.BetAmount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, roundResponse{
		Won:        result.Won,
		BetAmount:  result.BetAmount,
		WinAmount:  result.WinAmount,
		NewBalance: result.NewBalance,
	})
}
