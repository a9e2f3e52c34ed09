package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"statsdash/internal/dashboard"
	"statsdash/internal/history"
	"statsdash/internal/stats"
)

const defaultDarkMode = true

// DashboardHandler serves the rendered chart dashboards.
type DashboardHandler struct {
	history *history.Handle
	store   *history.Store // nil when persistence is disabled
}

// NewDashboardHandler creates a DashboardHandler. Pass a nil store when
// history persistence is disabled; the historical view then renders an
// explanatory error page.
func NewDashboardHandler(h *history.Handle, store *history.Store) *DashboardHandler {
	return &DashboardHandler{history: h, store: store}
}

// Index redirects to the live dashboard.
func (h *DashboardHandler) Index(c *fiber.Ctx) error {
	return c.Redirect("/dashboard?dark=true")
}

// Live renders the dashboard from the in-memory history.
func (h *DashboardHandler) Live(c *fiber.Ctx) error {
	dark := c.QueryBool("dark", defaultDarkMode)
	return c.Render("dashboard", dashboard.FromSnapshots(h.history.Snapshots(), dark))
}

// History renders the dashboard from the persisted log, reloaded from
// disk on every request and fully independent of the live history.
func (h *DashboardHandler) History(c *fiber.Ctx) error {
	dark := c.QueryBool("dark", defaultDarkMode)

	if h.store == nil {
		return c.Render("error", dashboard.ErrorContext{
			Title:   "Stats History",
			Message: "Stats history persistence is disabled.",
		})
	}

	loaded, err := h.store.Load()
	if err != nil {
		slog.Error("Loading persisted stats failed", "dir", h.store.Dir(), "error", err)
		return c.Status(fiber.StatusInternalServerError).Render("error", dashboard.ErrorContext{
			Title:   "Stats History",
			Message: "Failed to load the persisted stats history.",
		})
	}

	ring := history.RingFromSnapshots(loaded)
	snapshots := make([]stats.Snapshot, 0, ring.Len())
	for snapshot := range ring.All() {
		snapshots = append(snapshots, *snapshot)
	}
	return c.Render("dashboard", dashboard.FromSnapshots(snapshots, dark))
}
