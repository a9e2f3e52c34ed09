package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"

	"statsdash/internal/config"
	"statsdash/internal/handlers"
	"statsdash/internal/history"
	"statsdash/internal/routes"
	"statsdash/internal/stats"
	"statsdash/views"
)

func main() {
	// JSON structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting statsdash", "version", handlers.Version)

	// ─── Config ──────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// ─── History ─────────────────────────────────────────────────────────
	sharedHistory := history.NewHandle(cfg.RecentHistorySize)

	var store *history.Store
	if cfg.PersistenceEnabled() {
		store = history.NewStore(cfg.HistoryFilesDirectory, cfg.HistoryFilesMaxSizeBytes)
		slog.Info("History persistence enabled",
			"dir", cfg.HistoryFilesDirectory,
			"size_limit_bytes", cfg.HistoryFilesMaxSizeBytes,
		)
	} else {
		slog.Info("History persistence disabled")
	}

	// ─── Updater ─────────────────────────────────────────────────────────
	updater := history.NewUpdater(
		stats.System{},
		sharedHistory,
		store,
		cfg.CPUSampleDuration(),
		cfg.UpdateFrequency(),
		cfg.ConsolidationLimit,
	)
	updater.Start()

	// ─── Handlers ────────────────────────────────────────────────────────
	statsHandler := handlers.NewStatsHandler(sharedHistory)
	dashboardHandler := handlers.NewDashboardHandler(sharedHistory, store)

	// ─── Fiber App ───────────────────────────────────────────────────────
	engine := html.NewFileSystem(http.FS(views.FS), ".html")

	app := fiber.New(fiber.Config{
		AppName:      "statsdash v" + handlers.Version,
		ServerHeader: "statsdash",
		Views:        engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	app.Use(cors.New())

	app.Use(recover.New(recover.Config{
		EnableStackTrace: false,
	}))

	// Request ID + request logger
	app.Use(func(c *fiber.Ctx) error {
		requestID := uuid.NewString()
		c.Set("X-Request-ID", requestID)

		start := time.Now()
		err := c.Next()
		if c.Path() == "/api/health" {
			return err
		}
		slog.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
			"request_id", requestID,
		)
		return err
	})

	// ─── Routes ──────────────────────────────────────────────────────────
	routes.Setup(app, statsHandler, dashboardHandler)

	// ─── Graceful Shutdown ───────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down statsdash...")

		updater.Stop()

		if err := app.Shutdown(); err != nil {
			slog.Error("Fiber shutdown error", "error", err)
		}
	}()

	// ─── Start ───────────────────────────────────────────────────────────
	listenAddr := ":" + cfg.Port
	slog.Info("statsdash listening", "addr", listenAddr)

	if err := app.Listen(listenAddr); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
