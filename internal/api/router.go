package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AdminAPIKey      string
	GameServerAPIKey string
	RequestTimeout   time.Duration
	// AllowedOrigins is the CORS origin list for browser clients.
	AllowedOrigins []string
}

// NewRouter builds the chi router with every endpoint registered.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	// Key headers are not in AllowedHeaders; browsers reach client routes only.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		r.Get("/catalog", h.CatalogHandler)

		r.Route("/accounts/{accountId}", func(r chi.Router) {
			r.Get("/balance", h.GetBalanceHandler)
			r.Get("/movements", h.MovementsHandler)
			r.Post("/purchase", h.PurchaseHandler)
			r.Post("/checkpoint", h.CheckpointHandler)
			r.Get("/rewards/daily", h.RewardStatusHandler)
			r.Post("/rewards/daily/claim", h.ClaimRewardHandler)
			r.Get("/link", h.GetLinkHandler)
			r.Post("/link", h.LinkHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireKey(ServerKeyHeader, cfg.GameServerAPIKey))

			r.Post("/link/start", h.StartLinkHandler)
			r.Get("/tasks/pull", h.PullTasksHandler)
			r.Post("/tasks/ack", h.AckTasksHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireKey(AdminKeyHeader, cfg.AdminAPIKey))

			r.Post("/accounts", h.CreateAccountHandler)
			r.Post("/accounts/{accountId}/adjust", h.AdjustBalanceHandler)
			r.Post("/accounts/{accountId}/rewards/reset", h.ResetStreakHandler)
		})
	})

	return r
}
