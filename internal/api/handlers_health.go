// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sensor-spy/backend/internal/storage"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	medium  storage.Medium
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, medium storage.Medium) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		medium:  medium,
	}
}

// HandleHealth returns server health status and the storage medium state
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if h.medium != nil {
		state := h.medium.State()
		resp["storage"] = map[string]interface{}{
			"state":    state,
			"writable": state.Writable(),
			"readable": state.Readable(),
		}
	}
	return c.JSON(http.StatusOK, resp)
}
