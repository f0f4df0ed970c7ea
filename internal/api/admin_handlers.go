package api

import (
	"net/http"
)

type createAccountRequest struct {
	InitialBalance int64 `json:"initialBalance"`
}

// CreateAccountHandler handles POST /admin/accounts
func (h *HandlerProvider) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest

	err := decodeJSON(w, r, &req, true)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	created, err := h.svc.Accounts.Create(r.Context(), req.InitialBalance)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

type adjustRequest struct {
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

// AdjustBalanceHandler handles POST /admin/accounts/{accountId}/adjust
func (h *HandlerProvider) AdjustBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req adjustRequest

	err = decodeJSON(w, r, &req, false)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	balance, err := h.svc.Ledger.Adjust(r.Context(), accountID, req.Delta, req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accountId": accountID, "balance": balance})
}

// ResetStreakHandler handles POST /admin/accounts/{accountId}/rewards/reset
func (h *HandlerProvider) ResetStreakHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	err = h.svc.Rewards.Reset(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
