// handlers_capture.go - Capture session handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sensor-spy/backend/internal/models"
)

// CaptureHandlerImpl implements the CaptureHandler interface
type CaptureHandlerImpl struct {
	captures CaptureManager
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(captures CaptureManager) CaptureHandler {
	return &CaptureHandlerImpl{captures: captures}
}

type startCaptureRequest struct {
	Name string `json:"name"`
}

type addSamplesRequest struct {
	Samples []models.SensorSample `json:"samples"`
}

type pointRequest struct {
	Name   string    `json:"name"`
	Coords []float32 `json:"coords"`
}

type addPointsRequest struct {
	Points []pointRequest `json:"points"`
}

// HandleStartCapture opens a new capture session
func (h *CaptureHandlerImpl) HandleStartCapture(c echo.Context) error {
	var req startCaptureRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	session, err := h.captures.Start(req.Name)
	if err != nil {
		return fromCaptureError(req.Name, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// HandleListCaptures returns all capture sessions, newest first
func (h *CaptureHandlerImpl) HandleListCaptures(c echo.Context) error {
	return c.JSON(http.StatusOK, h.captures.List())
}

// HandleGetCapture returns the status of one capture session
func (h *CaptureHandlerImpl) HandleGetCapture(c echo.Context) error {
	id := c.Param("id")
	session, ok := h.captures.Get(id)
	if !ok {
		return NewNotFoundError("capture session", id)
	}
	return c.JSON(http.StatusOK, session)
}

// HandleAddSamples appends samples to a recording session
func (h *CaptureHandlerImpl) HandleAddSamples(c echo.Context) error {
	id := c.Param("id")
	var req addSamplesRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request", err)
	}
	if len(req.Samples) == 0 {
		return NewValidationError("samples")
	}

	total, err := h.captures.AddSamples(id, req.Samples...)
	if err != nil {
		return fromCaptureError(id, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"added":       len(req.Samples),
		"sampleCount": total,
	})
}

// HandleAddPoints appends points to a recording session.
// Every point must carry exactly two coordinates.
func (h *CaptureHandlerImpl) HandleAddPoints(c echo.Context) error {
	id := c.Param("id")
	var req addPointsRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request", err)
	}
	if len(req.Points) == 0 {
		return NewValidationError("points")
	}

	points := make([]models.Point, 0, len(req.Points))
	for i, p := range req.Points {
		if len(p.Coords) != 2 {
			return NewValidationError(fmt.Sprintf("points[%d].coords", i))
		}
		points = append(points, models.Point{Name: p.Name, X: p.Coords[0], Y: p.Coords[1]})
	}

	total, err := h.captures.AddPoints(id, points...)
	if err != nil {
		return fromCaptureError(id, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"added":      len(points),
		"pointCount": total,
	})
}

// HandleFinishCapture writes the session's files and closes it
func (h *CaptureHandlerImpl) HandleFinishCapture(c echo.Context) error {
	id := c.Param("id")
	session, err := h.captures.Finish(id)
	if err != nil {
		return fromCaptureError(id, err)
	}
	return c.JSON(http.StatusOK, session)
}
