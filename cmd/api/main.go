package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pet-clinic-ops/internal/adapters/auth/odin"
	"pet-clinic-ops/internal/adapters/storage/postgres"
	"pet-clinic-ops/internal/app"
	"pet-clinic-ops/internal/config"
	"pet-clinic-ops/internal/platform/logger"
	"pet-clinic-ops/internal/ports/auth"
	"pet-clinic-ops/internal/router"
	"pet-clinic-ops/internal/seed"
)

// @title Pet Clinic Ops API
// @version 1.0
// @description Cola de atención, fichas clínicas con descuento de stock y facturación por cita.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pet-clinic-ops",
		Short:         "Backend operativo de la clínica: cola, fichas, inventario y facturación",
		SilenceUsage:  true,
		SilenceErrors: true,
		// sin subcomando equivale a serve
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), false)
		},
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())
	return root
}

func serveCmd() *cobra.Command {
	var withSeed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), withSeed)
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "cargar datos de demo si el catálogo está vacío")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes (requiere DATABASE_URL)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return errors.New("migrate: DATABASE_URL is not set")
			}
			log := logger.New(cfg.Log.Options("pet-clinic-ops"))

			n, err := postgres.Migrate(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("migrations applied", map[string]any{"count": n})
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Carga el catálogo, inventario y cola de demo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Options("pet-clinic-ops"))
			if !cfg.Database.Enabled() {
				return errors.New("seed: DATABASE_URL is not set (the memory store does not outlive the process)")
			}

			ctx := cmd.Context()
			svc, cleanup, err := buildServices(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return runSeed(ctx, svc, cfg, log)
		},
	}
}

func runServer(ctx context.Context, withSeed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Options("pet-clinic-ops"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if withSeed {
		if err := runSeed(ctx, svc, cfg, log); err != nil {
			return err
		}
	}

	verifier, err := buildVerifier(cfg.Auth, log)
	if err != nil {
		return err
	}
	if verifier == nil {
		log.Warn("auth in dev mode: X-Debug-User-ID is trusted", nil)
	}

	storage := "memory"
	if cfg.Database.Enabled() {
		storage = "postgres"
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier: verifier,
			Logger:       log,
			Services:     svc,
			Storage:      storage,
			Location:     cfg.Server.Location(),
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "storage": storage})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildServices elige backend: Postgres si hay DSN, si no el store en memoria.
func buildServices(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Services, func(), error) {
	opts := app.Options{
		Logger:               log,
		LowStockThreshold:    cfg.Inventory.LowStockThreshold,
		DefaultServiceName:   cfg.Billing.DefaultService,
		DefaultPaymentMethod: cfg.Billing.DefaultPaymentMethod,
		ClinicName:           cfg.Billing.ClinicName,
		Currency:             cfg.Billing.Currency,
	}

	if !cfg.Database.Enabled() {
		return app.NewServices(app.MemoryRepos(), opts), func() {}, nil
	}

	if cfg.Database.AutoMigrate {
		n, err := postgres.Migrate(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("migrations applied", map[string]any{"count": n})
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return app.NewServices(app.PostgresRepos(pool), opts), pool.Close, nil
}

func buildVerifier(cfg config.AuthConfig, log logger.Logger) (auth.AuthVerifier, error) {
	if cfg.Mode != "odin" {
		return nil, nil
	}
	client, err := odin.NewClient(odin.Config{
		BaseURL: cfg.OdinBaseURL,
		APIKey:  cfg.OdinAPIKey,
		Timeout: cfg.OdinTimeout,
	})
	if err != nil {
		return nil, err
	}
	return odin.NewVerifier(client, log), nil
}

func runSeed(ctx context.Context, svc *app.Services, cfg *config.Config, log logger.Logger) error {
	res, err := seed.Demo(ctx, svc, time.Now().In(cfg.Server.Location()))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if res.Skipped {
		log.Info("seed skipped: catalog not empty", nil)
		return nil
	}
	log.Info("demo data loaded", map[string]any{
		"services":     len(res.ServiceIDs),
		"items":        len(res.ItemIDs),
		"appointments": len(res.AppointmentIDs),
	})
	return nil
}
