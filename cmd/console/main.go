package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/contactevin2u/orderops-console/internal/application/intake"
	"github.com/contactevin2u/orderops-console/internal/application/ops"
	"github.com/contactevin2u/orderops-console/internal/infrastructure/backend"
	consolehttp "github.com/contactevin2u/orderops-console/internal/interfaces/http"
	"github.com/contactevin2u/orderops-console/pkg/config"
	"github.com/contactevin2u/orderops-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.BaseURL).
		Msg("starting console")

	// The single backend boundary: parser, order service and document
	// locators all live behind one base URL.
	gateway := backend.NewClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)

	zl := log.Zerolog()
	sessions := consolehttp.NewSessionStore(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		func(id string) *consolehttp.Session {
			slog := zl.With().Str("session", id).Logger()
			return &consolehttp.Session{
				ID:     id,
				Intake: intake.NewWorkflow(gateway, gateway, slog),
				Ops:    ops.NewWorkflow(gateway, gateway, slog),
			}
		},
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, 5*time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	consolehttp.Router(app, consolehttp.RouterDeps{
		Sessions: sessions,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("console stopped")
}
