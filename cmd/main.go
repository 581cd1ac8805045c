// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activities-signup/internal/config"
	"github.com/Shivanand-hulikatti/activities-signup/internal/handler"
	"github.com/Shivanand-hulikatti/activities-signup/internal/logger"
	"github.com/Shivanand-hulikatti/activities-signup/internal/seed"
	"github.com/Shivanand-hulikatti/activities-signup/internal/service"
	"github.com/Shivanand-hulikatti/activities-signup/internal/tracing"
	"github.com/Shivanand-hulikatti/activities-signup/web"
)

var version = "dev"

func main() {
	if err := newRootCmd(run).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the root command; serve receives the loaded configuration.
func newRootCmd(serve func(context.Context, *config.Config) error) *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "activities",
		Short:        "Mergington High School extracurricular activities API",
		Long:         `Serves the activities signup API and its browser client.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml or ./config.yaml)")
	cmd.Flags().StringP("port", "p", "",
		"HTTP listen port")
	cmd.Flags().String("store", "",
		"registry backend: memory, postgres or redis")
	cmd.Flags().String("seed", "",
		"YAML file with the initial activities (default: built-in list)")

	// Bind flags to viper
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("store.driver", cmd.Flags().Lookup("store"))
	_ = v.BindPFlag("store.seed_file", cmd.Flags().Lookup("seed"))

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Tracing ────────────────────────────────────────────────────────
	tp, err := tracing.NewProvider(ctx, cfg.Tracing, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// ── 2. Registry backend ───────────────────────────────────────────────
	activities, err := seed.Load(cfg.Store.SeedFile)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	store, closeStore, err := openStore(ctx, cfg, activities, log)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer closeStore()
	log.Info("registry ready",
		zap.String("driver", cfg.Store.Driver),
		zap.Int("seeded_activities", len(activities)),
	)

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	svc := service.NewActivityService(store, log, tp.Tracer())
	router := handler.NewRouter(svc, web.Static(), log)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("version", version),
			zap.Bool("tracing", tp.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
