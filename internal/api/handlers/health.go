package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"meliproxy/internal/session"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	sessions session.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store session.Store) *HealthHandler {
	return &HealthHandler{sessions: store}
}

// Register adds the health routes at the server root.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 if the session store is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.sessions.Ping(c.Request().Context()); err != nil {
		return c.JSON(
			http.StatusServiceUnavailable,
			map[string]string{"status": "unavailable"},
		)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
