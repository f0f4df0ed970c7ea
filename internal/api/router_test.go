package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fastprodman/gamebridge/internal/apperr"
	"github.com/fastprodman/gamebridge/internal/repos/bindings"
	"github.com/fastprodman/gamebridge/internal/repos/movements"
	"github.com/fastprodman/gamebridge/internal/repos/tasks"
	"github.com/fastprodman/gamebridge/internal/services/accounts"
	"github.com/fastprodman/gamebridge/internal/services/catalog"
	"github.com/fastprodman/gamebridge/internal/services/commerce"
	"github.com/fastprodman/gamebridge/internal/services/delivery"
	"github.com/fastprodman/gamebridge/internal/services/rewards"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminKey  = "admin-secret"
	serverKey = "server-secret"
)

type fakeLedger struct {
	balance int64
	err     error
	adjust  int64
}

func (f *fakeLedger) GetBalance(context.Context, uint64) (int64, error) { return f.balance, f.err }

func (f *fakeLedger) Movements(context.Context, uint64, int) ([]movements.Movement, error) {
	return []movements.Movement{{ID: 2, Delta: -50, Reason: movements.ReasonPurchase}}, f.err
}

func (f *fakeLedger) Adjust(_ context.Context, _ uint64, delta int64, _ string) (int64, error) {
	f.adjust = delta
	return f.balance + delta, f.err
}

type fakeCommerce struct {
	got commerce.Request
	err error
}

func (f *fakeCommerce) Purchase(_ context.Context, req commerce.Request) (commerce.Receipt, error) {
	f.got = req
	if f.err != nil {
		return commerce.Receipt{}, f.err
	}

	return commerce.Receipt{OrderID: uuid.New(), TaskID: uuid.New(), Price: 100, Balance: 400}, nil
}

func (f *fakeCommerce) Checkpoint(context.Context, uint64) (uuid.UUID, error) {
	return uuid.New(), f.err
}

type fakeRewards struct{ err error }

func (f *fakeRewards) Status(context.Context, uint64) (rewards.Status, error) {
	return rewards.Status{CanClaim: true, TodayReward: 5}, f.err
}

func (f *fakeRewards) Claim(context.Context, uint64) (rewards.Claim, error) {
	if f.err != nil {
		return rewards.Claim{}, f.err
	}

	return rewards.Claim{Added: 15, Balance: 15, Streak: 4, LastClaimDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeRewards) Reset(context.Context, uint64) error { return f.err }

type fakePairing struct{ err error }

func (f *fakePairing) Start(string, string) (string, time.Time, error) {
	return "123456", time.Date(2026, 3, 10, 12, 5, 0, 0, time.UTC), f.err
}

func (f *fakePairing) Complete(_ context.Context, id uint64, _ string) (bindings.Binding, error) {
	return bindings.Binding{AccountID: id, ExternalSubjectID: "uuid-steve", DisplayName: "Steve"}, f.err
}

func (f *fakePairing) Binding(_ context.Context, id uint64) (bindings.Binding, error) {
	return bindings.Binding{AccountID: id, ExternalSubjectID: "uuid-steve", DisplayName: "Steve"}, f.err
}

type fakeQueue struct {
	list  []tasks.Task
	acked []string
}

func (f *fakeQueue) Pull(context.Context, int) ([]tasks.Task, error) { return f.list, nil }

func (f *fakeQueue) Ack(_ context.Context, ids []string) (delivery.AckResult, error) {
	f.acked = ids
	return delivery.AckResult{Removed: int64(len(ids))}, nil
}

type fakeAccounts struct{}

func (fakeAccounts) Create(_ context.Context, initial int64) (accounts.Created, error) {
	if initial < 0 {
		return accounts.Created{}, apperr.Invalid("negative")
	}

	return accounts.Created{AccountID: 7, Balance: initial}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) List() []catalog.Listing {
	price := int64(50)
	return []catalog.Listing{{ID: "minecraft:diamond", Category: catalog.CategoryItem, UnitPrice: &price}}
}

type fixture struct {
	ledger   *fakeLedger
	commerce *fakeCommerce
	rewards  *fakeRewards
	pairing  *fakePairing
	queue    *fakeQueue
	handler  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		ledger:   &fakeLedger{balance: 500},
		commerce: &fakeCommerce{},
		rewards:  &fakeRewards{},
		pairing:  &fakePairing{},
		queue:    &fakeQueue{},
	}

	f.handler = NewRouter(Services{
		Ledger:   f.ledger,
		Commerce: f.commerce,
		Rewards:  f.rewards,
		Pairing:  f.pairing,
		Queue:    f.queue,
		Accounts: fakeAccounts{},
		Catalog:  fakeCatalog{},
	}, RouterConfig{AdminAPIKey: adminKey, GameServerAPIKey: serverKey, RequestTimeout: time.Second})

	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	}

	return rec, out
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec, body := newFixture().do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetBalance(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, body := f.do(t, http.MethodGet, "/accounts/3/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["accountId"])
	assert.EqualValues(t, 500, body["balance"])

	rec, _ = f.do(t, http.MethodGet, "/accounts/0/balance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/accounts/abc/balance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
		kind string
	}{
		{apperr.Invalid("bad"), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("wallet %w", apperr.ErrNotFound), http.StatusNotFound, "not_found"},
		{commerce.ErrAccountNotLinked, http.StatusForbidden, "unauthorized"},
		{rewards.ErrAlreadyClaimedToday, http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: timeout", apperr.ErrTransient), http.StatusServiceUnavailable, "transient"},
		{apperr.Invariant("enqueue", errors.New("boom")), http.StatusInternalServerError, "invariant"},
		{errors.New("other"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		f := newFixture()
		f.ledger.err = tt.err

		rec, body := f.do(t, http.MethodGet, "/accounts/1/balance", "")
		assert.Equal(t, tt.want, rec.Code, "err=%v", tt.err)
		assert.Equal(t, tt.kind, body["error"], "err=%v", tt.err)

		if tt.want == http.StatusInternalServerError {
			assert.Equal(t, "internal error", body["message"])
		}
	}
}

func TestPurchase(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, body := f.do(t, http.MethodPost, "/accounts/1/purchase",
		`{"effectId":"teleport:custom","quantity":1,"payload":{"x":1,"y":70,"z":2}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 400, body["balance"])
	assert.NotEmpty(t, body["orderId"])
	assert.NotEmpty(t, body["taskId"])
	assert.Equal(t, uint64(1), f.commerce.got.AccountID)
	assert.JSONEq(t, `{"x":1,"y":70,"z":2}`, string(f.commerce.got.Payload))

	_, _ = f.do(t, http.MethodPost, "/accounts/1/purchase", `{"effectId":"minecraft:bread"}`)
	assert.Equal(t, 1, f.commerce.got.Quantity, "quantity defaults to 1")

	rec, _ = f.do(t, http.MethodPost, "/accounts/1/purchase", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/accounts/1/purchase", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/accounts/1/purchase", `{"effectId":"x","extra":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.commerce.err = fmt.Errorf("purchase: debit: %w", &apperr.InsufficientFundsError{Need: 100, Have: 40})

	rec, body := f.do(t, http.MethodPost, "/accounts/1/purchase", `{"effectId":"minecraft:diamond","quantity":2}`)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_funds", body["error"])
	assert.EqualValues(t, 100, body["need"])
	assert.EqualValues(t, 40, body["have"])
}

func TestRewards(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, body := f.do(t, http.MethodGet, "/accounts/1/rewards/daily", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["canClaim"])
	assert.Nil(t, body["lastClaimDate"])

	rec, body = f.do(t, http.MethodPost, "/accounts/1/rewards/daily/claim", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15, body["added"])
	assert.EqualValues(t, 4, body["streak"])
	assert.Equal(t, "2026-03-10", body["lastClaimDate"])
}

func TestGameServerRoutesNeedKey(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, _ := f.do(t, http.MethodGet, "/tasks/pull", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/tasks/pull", "", ServerKeyHeader, "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/tasks/pull", "", ServerKeyHeader, adminKey)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := f.do(t, http.MethodPost, "/link/start", `{"uuid":"u","name":"Steve"}`, ServerKeyHeader, serverKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456", body["code"])
}

func TestPullAndAck(t *testing.T) {
	t.Parallel()

	f := newFixture()
	orderID := uuid.New()
	f.queue.list = []tasks.Task{
		{ID: uuid.New(), OrderID: uuid.NullUUID{UUID: orderID, Valid: true}, ExternalSubjectID: "uuid-steve", EffectID: "effect:speed", Quantity: 1, Payload: `{"amplifier":1,"durationSeconds":30}`},
		{ID: uuid.New(), ExternalSubjectID: "uuid-steve", EffectID: "checkpoint:set", Quantity: 1},
	}

	rec, body := f.do(t, http.MethodGet, "/tasks/pull?limit=10", "", ServerKeyHeader, serverKey)
	require.Equal(t, http.StatusOK, rec.Code)

	list, ok := body["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	first := list[0].(map[string]any)
	assert.Equal(t, orderID.String(), first["orderId"])
	assert.Equal(t, map[string]any{"amplifier": float64(1), "durationSeconds": float64(30)}, first["payload"])

	second := list[1].(map[string]any)
	assert.Nil(t, second["orderId"])
	_, hasPayload := second["payload"]
	assert.False(t, hasPayload)

	rec, _ = f.do(t, http.MethodGet, "/tasks/pull?limit=-1", "", ServerKeyHeader, serverKey)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodPost, "/tasks/ack", `{"ids":["a","b"]}`, ServerKeyHeader, serverKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["removed"])
	assert.Equal(t, []string{"a", "b"}, f.queue.acked)

	for _, bad := range []string{`{"ids":"a"}`, `{}`, `{"ids":null}`, `[]`, ``} {
		rec, _ = f.do(t, http.MethodPost, "/tasks/ack", bad, ServerKeyHeader, serverKey)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", bad)
	}
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, _ := f.do(t, http.MethodPost, "/admin/accounts", `{}`, AdminKeyHeader, serverKey)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := f.do(t, http.MethodPost, "/admin/accounts", `{"initialBalance":100}`, AdminKeyHeader, adminKey)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 7, body["accountId"])
	assert.EqualValues(t, 100, body["balance"])

	rec, _ = f.do(t, http.MethodPost, "/admin/accounts", ``, AdminKeyHeader, adminKey)
	assert.Equal(t, http.StatusCreated, rec.Code, "empty body creates an empty account")

	rec, body = f.do(t, http.MethodPost, "/admin/accounts/1/adjust", `{"delta":-20,"note":"refund"}`, AdminKeyHeader, adminKey)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 480, body["balance"])
	assert.Equal(t, int64(-20), f.ledger.adjust)

	rec, _ = f.do(t, http.MethodPost, "/admin/accounts/1/rewards/reset", "", AdminKeyHeader, adminKey)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientLinkAndCatalog(t *testing.T) {
	t.Parallel()

	f := newFixture()

	rec, body := f.do(t, http.MethodPost, "/accounts/1/link", `{"code":"123456"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uuid-steve", body["playerUuid"])

	rec, _ = f.do(t, http.MethodPost, "/accounts/1/link", `{"code":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = f.do(t, http.MethodGet, "/accounts/1/link", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Steve", body["playerName"])

	rec, body = f.do(t, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["effects"], 1)

	rec, body = f.do(t, http.MethodGet, "/accounts/1/movements?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["movements"], 1)

	rec, _ = f.do(t, http.MethodPost, "/accounts/1/checkpoint", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	f := newFixture()

	req := httptest.NewRequest(http.MethodOptions, "/accounts/1/purchase", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
