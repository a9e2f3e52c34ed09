// Package handlers contains the fiber request handlers.
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"statsdash/internal/history"
	"statsdash/internal/stats"
)

var startTime = time.Now()

// Version is the reported service version.
var Version = "1.0.0"

// StatsHandler serves the JSON stats endpoints.
type StatsHandler struct {
	history *history.Handle
}

// NewStatsHandler creates a StatsHandler reading from the shared history.
func NewStatsHandler(h *history.Handle) *StatsHandler {
	return &StatsHandler{history: h}
}

// Health reports service liveness.
func (h *StatsHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "statsdash",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"uptime":  time.Since(startTime).String(),
		"history": h.history.Len(),
	})
}

// GetAll returns the most recent full snapshot.
func (h *StatsHandler) GetAll(c *fiber.Ctx) error {
	snapshot, ok := h.history.MostRecent()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no stats collected yet")
	}
	return c.JSON(snapshot)
}

// GetGeneral returns the general section of the most recent snapshot.
func (h *StatsHandler) GetGeneral(c *fiber.Ctx) error {
	snapshot, ok := h.history.MostRecent()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no stats collected yet")
	}
	return c.JSON(snapshot.General)
}

// GetCPU returns the CPU section of the most recent snapshot.
func (h *StatsHandler) GetCPU(c *fiber.Ctx) error {
	snapshot, ok := h.history.MostRecent()
	if !ok {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no stats collected yet")
	}
	return c.JSON(snapshot.CPU)
}

// GetMemory samples and returns current memory usage.
func (h *StatsHandler) GetMemory(c *fiber.Ctx) error {
	memory := stats.SampleMemory()
	if memory == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "memory stats unavailable")
	}
	return c.JSON(memory)
}

// GetFilesystems samples and returns current filesystem usage.
func (h *StatsHandler) GetFilesystems(c *fiber.Ctx) error {
	mounts := stats.SampleFilesystems()
	if mounts == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "filesystem stats unavailable")
	}
	return c.JSON(mounts)
}

// GetNetwork samples and returns current network stats.
func (h *StatsHandler) GetNetwork(c *fiber.Ctx) error {
	return c.JSON(stats.SampleNetwork())
}
