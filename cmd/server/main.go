// Command main is the entry point for the Agora backend server.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/media"
	"agora/internal/middleware"
	"agora/internal/observability"
	"agora/internal/server"
)

// @title Agora API
// @version 1.0
// @description Social API with profiles, follows, tagged posts, threaded comments and like/dislike reactions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@agora.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	seedPreset := flag.String("seed-preset", "", "Seed an empty development database with this preset")
	presetsFile := flag.String("presets", "", "Optional YAML file with extra seed presets")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "agora-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
		DBSystem:       dbSystemFor(cfg.DBDriver),
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx := context.Background()
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SeedPreset:  *seedPreset,
		PresetsFile: *presetsFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb, media.NewLocalStore(cfg))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// dbSystemFor maps DB_DRIVER to the OpenTelemetry db.system value.
func dbSystemFor(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
