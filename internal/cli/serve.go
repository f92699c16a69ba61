package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/csp2hub/plugin-repository/docs"
	"github.com/csp2hub/plugin-repository/internal/api"
	"github.com/csp2hub/plugin-repository/internal/health"
	"github.com/csp2hub/plugin-repository/internal/storage"
)

const (
	bodyLimit       = 64 * 1024
	shutdownTimeout = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the persisted manifest over HTTP",
		Long: "serve loads the manifest and exposes it read-only together with plugin\n" +
			"lookup, category, statistics and health endpoints.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg

	docs.SwaggerInfo.Host = os.Getenv("DOMAIN")

	log.Info().
		Int("server_port", cfg.Server.Port).
		Str("manifest_path", cfg.Paths.ManifestPath).
		Strs("cors_origins", cfg.Server.CORSOrigins).
		Int("rate_limit_rps", cfg.Server.RateLimitRPS).
		Int("rate_limit_burst", cfg.Server.RateLimitBurst).
		Msg("Catalog server starting")

	store := storage.NewStore(cfg.Paths.ManifestPath)
	if err := store.Load(ctx); err != nil {
		// The server still starts; /health reports unhealthy until a reload succeeds
		log.Warn().Err(err).Msg("Catalog not available at startup")
	}

	router := api.SetupRouter(store, health.NewSystemHealthChecker(store), api.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		BodyLimit:      bodyLimit,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})
	defer router.Cleanup()

	shutdownDone := setupGracefulShutdown(ctx, router.App)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Starting HTTP server")

	if err := router.App.Listen(addr); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-shutdownDone
	return nil
}

// setupGracefulShutdown stops the server on SIGINT, SIGTERM or when ctx ends.
// The returned channel closes once shutdown has completed.
func setupGracefulShutdown(ctx context.Context, app *fiber.App) <-chan struct{} {
	done := make(chan struct{})
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)
		<-ctx.Done()
		stop()

		log.Info().Msg("Received shutdown signal, initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}

		log.Info().Msg("Graceful shutdown completed")
	}()

	return done
}
