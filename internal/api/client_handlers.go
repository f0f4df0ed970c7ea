package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fastprodman/gamebridge/internal/services/commerce"
)

// GetBalanceHandler handles GET /accounts/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	balance, err := h.svc.Ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"accountId": accountID, "balance": balance})
}

type purchaseRequest struct {
	EffectID string          `json:"effectId"`
	Quantity *int            `json:"quantity"`
	Payload  json.RawMessage `json:"payload"`
}

// PurchaseHandler handles POST /accounts/{accountId}/purchase
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req purchaseRequest

	err = decodeJSON(w, r, &req, false)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.EffectID == "" {
		writeBadRequest(w, "effectId required")
		return
	}

	// Quantity defaults to one unit.
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	receipt, err := h.svc.Commerce.Purchase(r.Context(), commerce.Request{
		AccountID: accountID,
		EffectID:  req.EffectID,
		Quantity:  qty,
		Payload:   req.Payload,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// CheckpointHandler handles POST /accounts/{accountId}/checkpoint
func (h *HandlerProvider) CheckpointHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	taskID, err := h.svc.Commerce.Checkpoint(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"taskId": taskID})
}

// RewardStatusHandler handles GET /accounts/{accountId}/rewards/daily
func (h *HandlerProvider) RewardStatusHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st, err := h.svc.Rewards.Status(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rewardStatusResponse{
		CanClaim:      st.CanClaim,
		TodayReward:   st.TodayReward,
		Streak:        st.Streak,
		LastClaimDate: formatDate(st.LastClaimDate),
	})
}

type rewardStatusResponse struct {
	CanClaim      bool    `json:"canClaim"`
	TodayReward   int64   `json:"todayReward"`
	Streak        int     `json:"streak"`
	LastClaimDate *string `json:"lastClaimDate"`
}

// ClaimRewardHandler handles POST /accounts/{accountId}/rewards/daily/claim
func (h *HandlerProvider) ClaimRewardHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	c, err := h.svc.Rewards.Claim(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"added":         c.Added,
		"balance":       c.Balance,
		"streak":        c.Streak,
		"lastClaimDate": c.LastClaimDate.Format(time.DateOnly),
	})
}

type linkRequest struct {
	Code string `json:"code"`
}

// LinkHandler handles POST /accounts/{accountId}/link
func (h *HandlerProvider) LinkHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req linkRequest

	err = decodeJSON(w, r, &req, false)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Code == "" {
		writeBadRequest(w, "code required")
		return
	}

	b, err := h.svc.Pairing.Complete(r.Context(), accountID, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bindingResponse{PlayerUUID: b.ExternalSubjectID, PlayerName: b.DisplayName})
}

type bindingResponse struct {
	PlayerUUID string `json:"playerUuid"`
	PlayerName string `json:"playerName"`
}

// GetLinkHandler handles GET /accounts/{accountId}/link
func (h *HandlerProvider) GetLinkHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b, err := h.svc.Pairing.Binding(r.Context(), accountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bindingResponse{PlayerUUID: b.ExternalSubjectID, PlayerName: b.DisplayName})
}

type movementResponse struct {
	ID        int64     `json:"id"`
	Delta     int64     `json:"delta"`
	Reason    string    `json:"reason"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovementsHandler handles GET /accounts/{accountId}/movements?limit=
func (h *HandlerProvider) MovementsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	list, err := h.svc.Ledger.Movements(r.Context(), accountID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]movementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, movementResponse{
			ID:        m.ID,
			Delta:     m.Delta,
			Reason:    string(m.Reason),
			Note:      m.Note,
			CreatedAt: m.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"movements": out})
}

// CatalogHandler handles GET /catalog
func (h *HandlerProvider) CatalogHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"effects": h.svc.Catalog.List()})
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(time.DateOnly)

	return &s
}
