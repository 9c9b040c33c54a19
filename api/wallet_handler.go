package api

import (
	"encoding/json"
	"net/http"

	"cashier/service"
	"github.com/go-playground/validator/v10"
)

// WalletHandler serves the user-facing wallet routes. The account ID comes
// from the authenticated token subject.
type WalletHandler struct {
	accounts service.AccountService
	requests service.RequestService
	ledger   service.LedgerService
	validate *validator.Validate
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(accounts service.AccountService, requests service.RequestService, ledger service.LedgerService) *WalletHandler {
	return &WalletHandler{
		accounts: accounts,
		requests: requests,
		ledger:   ledger,
		validate: validator.New(),
	}
}

// Register handles POST /api/wallet/register: first-login provisioning.
// Idempotent; an existing account is returned unchanged.
func (h *WalletHandler) Register(w http.ResponseWriter, r *http.Request) {
	var dto registerRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	account, err := h.accounts.GetOrCreateAccount(r.Context(), Subject(r.Context()), dto.ReferredBy)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

// GetAccount handles GET /api/wallet/account
func (h *WalletHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.GetAccount(r.Context(), Subject(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

// CreateDeposit handles POST /api/wallet/deposits
func (h *WalletHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var dto createDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.requests.CreateDepositRequest(r.Context(), Subject(r.Context()), dto.Amount, dto.PaymentMetadata)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRequestResponse(req))
}

// CreateWithdrawal handles POST /api/wallet/withdrawals
func (h *WalletHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	var dto createWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.requests.CreateWithdrawalRequest(r.Context(), Subject(r.Context()), dto.Amount, dto.Method)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRequestResponse(req))
}

// GetBalance handles GET /api/wallet/balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := Subject(r.Context())

	balance, err := h.ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balanceResponse{AccountID: accountID, Balance: balance})
}

// GetHistory handles GET /api/wallet/history
func (h *WalletHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.EntriesForAccount(r.Context(), Subject(r.Context()), 50)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toLedgerEntryResponse(entry))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRequests handles GET /api/wallet/requests
func (h *WalletHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requests.ListAccountRequests(r.Context(), Subject(r.Context()), 50)
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
