package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/gamebridge/internal/api"
	"github.com/fastprodman/gamebridge/internal/infra/logging"
	"github.com/fastprodman/gamebridge/internal/infra/pgutils"
	"github.com/fastprodman/gamebridge/internal/services/accounts"
	"github.com/fastprodman/gamebridge/internal/services/catalog"
	"github.com/fastprodman/gamebridge/internal/services/commerce"
	"github.com/fastprodman/gamebridge/internal/services/delivery"
	"github.com/fastprodman/gamebridge/internal/services/ledger"
	"github.com/fastprodman/gamebridge/internal/services/pairing"
	"github.com/fastprodman/gamebridge/internal/services/rewards"
	"github.com/fastprodman/gamebridge/pkg/envconf"
	"github.com/fastprodman/gamebridge/pkg/shutdownqueue"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logger := logging.SetupJSON(cfg.LogLevel, "gamebridge-api")

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// --- Services ---
	ledgerSrv := ledger.New(dbConns, cfg.StoreTimeout)
	queue := delivery.New(dbConns, cfg.StoreTimeout)
	registry := pairing.NewRegistry(cfg.Pairing.CodeTTL)

	svcs := api.Services{
		Ledger:   ledgerSrv,
		Commerce: commerce.New(dbConns, cat, ledgerSrv, queue, cfg.StoreTimeout),
		Rewards:  rewards.New(dbConns, ledgerSrv, cfg.StoreTimeout),
		Pairing:  pairing.New(dbConns, registry, cfg.StoreTimeout),
		Queue:    queue,
		Accounts: accounts.New(dbConns, ledgerSrv, cfg.StoreTimeout),
		Catalog:  cat,
	}

	sweeper, err := registry.StartSweeper(cfg.Pairing.SweepSchedule, logger)
	if err != nil {
		return fmt.Errorf("start pairing sweeper: %w", err)
	}

	shutdownqueue.Add("pairing sweeper", func(c context.Context) error {
		select {
		case <-sweeper.Stop().Done():
			return nil
		case <-c.Done():
			return fmt.Errorf("stop sweeper: %w", c.Err())
		}
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.NewRouter(svcs, api.RouterConfig{
		AdminAPIKey:      cfg.Access.AdminAPIKey,
		GameServerAPIKey: cfg.Access.GameServerAPIKey,
		RequestTimeout:   cfg.RequestTimeout,
		AllowedOrigins:   cfg.CORSOrigins,
	}), cfg.RequestTimeout)

	shutdownqueue.Add("http server", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	})

	slog.Info("API started", "port", cfg.Port, "catalog_effects", len(cat.List()))

	// On signal the deferred queue shuts the server down; otherwise the
	// server died and its error is ready.
	<-gctx.Done()

	if ctx.Err() != nil {
		return nil
	}

	return g.Wait()
}
