package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Need    *int64 `json:"need,omitempty"`
	Have    *int64 `json:"have,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: kind, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, "invalid_input", msg)
}

// statusFor maps an error kind to its HTTP status. Transient is checked first
// because a timed out step may also carry the kind of the step itself.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrTransient):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service failure. Internal details are logged,
// never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: apperr.KindOf(err), Message: err.Error()}

	var ife *apperr.InsufficientFundsError
	if errors.As(err, &ife) {
		body.Need, body.Have = &ife.Need, &ife.Have
	}

	switch status {
	case http.StatusInternalServerError:
		body.Message = "internal error"

		slog.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	case http.StatusServiceUnavailable:
		body.Message = "temporarily unavailable, retry later"
		w.Header().Set("Retry-After", "1")

		slog.Warn("request hit transient failure",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}

	writeJSON(w, status, body)
}

// parseAccountID reads `{accountId}` from chi routes like:
//
//	GET  /accounts/{accountId}/balance
//	POST /accounts/{accountId}/purchase
func parseAccountID(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, errors.New("missing accountId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid accountId: %w", err)
	}
	if id == 0 {
		return 0, errors.New("invalid accountId: must be positive")
	}

	return id, nil
}

// decodeJSON reads a size-capped body and rejects unknown fields. An empty
// body is an error unless allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	//nolint:errcheck
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}

			return errors.New("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}

	return v, nil
}
