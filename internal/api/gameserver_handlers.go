package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fastprodman/gamebridge/internal/repos/tasks"
)

type startLinkRequest struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// StartLinkHandler handles POST /link/start
func (h *HandlerProvider) StartLinkHandler(w http.ResponseWriter, r *http.Request) {
	var req startLinkRequest

	err := decodeJSON(w, r, &req, false)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	code, expiresAt, err := h.svc.Pairing.Start(req.UUID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"code": code, "expiresAt": expiresAt.UTC().Format(time.RFC3339)})
}

type taskResponse struct {
	ID         string          `json:"id"`
	OrderID    *string         `json:"orderId"`
	PlayerUUID string          `json:"playerUuid"`
	EffectID   string          `json:"effectId"`
	Quantity   int             `json:"quantity"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toTaskResponse(t tasks.Task) taskResponse {
	out := taskResponse{
		ID:         t.ID.String(),
		PlayerUUID: t.ExternalSubjectID,
		EffectID:   t.EffectID,
		Quantity:   t.Quantity,
		Message:    t.Message,
		CreatedAt:  t.CreatedAt,
	}

	if t.OrderID.Valid {
		s := t.OrderID.UUID.String()
		out.OrderID = &s
	}

	// Payloads are written as JSON by the catalog; anything else is passed as a string.
	if t.Payload != "" {
		if json.Valid([]byte(t.Payload)) {
			out.Payload = json.RawMessage(t.Payload)
		} else {
			out.Payload, _ = json.Marshal(t.Payload)
		}
	}

	return out
}

// PullTasksHandler handles GET /tasks/pull?limit=
func (h *HandlerProvider) PullTasksHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	list, err := h.svc.Queue.Pull(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]taskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTaskResponse(t))
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

type ackRequest struct {
	IDs *[]string `json:"ids"`
}

// AckTasksHandler handles POST /tasks/ack
func (h *HandlerProvider) AckTasksHandler(w http.ResponseWriter, r *http.Request) {
	var req ackRequest

	err := decodeJSON(w, r, &req, false)
	if err != nil {
		writeBadRequest(w, "ids must be an array of task ids")
		return
	}
	if req.IDs == nil {
		writeBadRequest(w, "ids must be an array of task ids")
		return
	}

	res, err := h.svc.Queue.Ack(r.Context(), *req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
