// Package server provides the optional ops HTTP API: health, metrics and cache status.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"speechmeme/internal/memes"
)

// StatusReader reports the cache slot state without fetching.
type StatusReader interface {
	Status(ctx context.Context) memes.Status
}

// Handler holds the HTTP handlers
type Handler struct {
	status StatusReader
}

// NewHandler creates a new handler reading from status
func NewHandler(status StatusReader) *Handler {
	return &Handler{status: status}
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Snapshot handles GET /v1/snapshot
func (h *Handler) Snapshot(c echo.Context) error {
	st := h.status.Status(c.Request().Context())
	if st.Error != "" {
		return c.JSON(http.StatusServiceUnavailable, st)
	}
	return c.JSON(http.StatusOK, st)
}
