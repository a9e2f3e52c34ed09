// Package routes defines the HTTP route table.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"statsdash/internal/handlers"
)

// Setup registers every route on the app.
func Setup(app *fiber.App, statsHandler *handlers.StatsHandler, dashboardHandler *handlers.DashboardHandler) {
	app.Get("/api/health", statsHandler.Health)

	// ─── JSON stats ──────────────────────────────────────────────────────
	app.Get("/stats", statsHandler.GetAll)
	app.Get("/stats/general", statsHandler.GetGeneral)
	app.Get("/stats/cpu", statsHandler.GetCPU)
	app.Get("/stats/memory", statsHandler.GetMemory)
	app.Get("/stats/filesystems", statsHandler.GetFilesystems)
	app.Get("/stats/network", statsHandler.GetNetwork)

	// ─── Dashboards ──────────────────────────────────────────────────────
	app.Get("/", dashboardHandler.Index)
	app.Get("/dashboard", dashboardHandler.Live)
	app.Get("/dashboard/history", dashboardHandler.History)
}
