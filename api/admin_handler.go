package api

import (
	"encoding/json"
	"net/http"
	"time"

	"cashier/models"
	"cashier/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AdminHandler serves the back-office routes. The admin ID comes from the
// authenticated token subject.
type AdminHandler struct {
	accounts  service.AccountService
	requests  service.RequestService
	ledger    service.LedgerService
	reporting service.ReportingService
	validate  *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accounts service.AccountService, requests service.RequestService, ledger service.LedgerService, reporting service.ReportingService) *AdminHandler {
	return &AdminHandler{
		accounts:  accounts,
		requests:  requests,
		ledger:    ledger,
		reporting: reporting,
		validate:  validator.New(),
	}
}

// ListRequests handles GET /api/admin/requests?status=
func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	status := models.RequestStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.RequestStatusPending
	}
	switch status {
	case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
	default:
		respondError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	requests, err := h.requests.ListRequests(r.Context(), status, 100)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]transferRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	respondJSON(w, http.StatusOK, out)
}

// ApproveRequest handles POST /api/admin/requests/{id}/approve
func (h *AdminHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var dto decisionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	result, err := h.requests.ApproveRequest(r.Context(), requestID, Subject(r.Context()), dto.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDecisionResponse(result))
}

// RejectRequest handles POST /api/admin/requests/{id}/reject
func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var dto decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.requests.RejectRequest(r.Context(), requestID, Subject(r.Context()), dto.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toDecisionResponse(result))
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporting.DashboardReport(r.Context(), time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// AdjustAccount handles POST /api/admin/accounts/{id}/adjust
func (h *AdminHandler) AdjustAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var dto adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.accounts.AdminAdjust(r.Context(), accountID, dto.Amount, Subject(r.Context()), dto.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toLedgerEntryResponse(entry))
}

// AuditAccount handles GET /api/admin/accounts/{id}/audit; it replays the
// account's ledger and reports whether the fold matches the stored balance
func (h *AdminHandler) AuditAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	replayed, stored, err := h.ledger.ReplayBalance(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, auditResponse{
		AccountID:       accountID,
		StoredBalance:   stored,
		ReplayedBalance: replayed,
		Consistent:      replayed == stored,
	})
}
