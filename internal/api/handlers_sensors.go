// handlers_sensors.go - Sensor listing handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sensor-spy/backend/internal/models"
	"github.com/sensor-spy/backend/internal/records"
	"github.com/sensor-spy/backend/internal/sensors"
	"github.com/sensor-spy/backend/internal/storage"
)

// SensorHandlerImpl implements the SensorHandler interface
type SensorHandlerImpl struct {
	spy         *sensors.Spy
	gateway     *records.Gateway
	deviceModel string
}

// NewSensorHandler creates a new sensor handler
func NewSensorHandler(spy *sensors.Spy, gateway *records.Gateway, deviceModel string) SensorHandler {
	return &SensorHandlerImpl{
		spy:         spy,
		gateway:     gateway,
		deviceModel: deviceModel,
	}
}

// HandleListSensors returns the sensors, optionally filtered by ?type=
func (h *SensorHandlerImpl) HandleListSensors(c echo.Context) error {
	typ := c.QueryParam("type")
	if typ == "" {
		return c.JSON(http.StatusOK, h.spy.Sensors())
	}

	switch t := models.SensorType(typ); t {
	case models.SensorTypeAccelerometer, models.SensorTypeGyroscope,
		models.SensorTypeMagnetometer, models.SensorTypeOther:
		return c.JSON(http.StatusOK, h.spy.ByType(t))
	default:
		return NewValidationError("type")
	}
}

// HandleSensorNames returns how many sensors carry each name
func (h *SensorHandlerImpl) HandleSensorNames(c echo.Context) error {
	return c.JSON(http.StatusOK, h.spy.NameCounts())
}

// HandleWriteSensorInfo writes the sensor listing file of the device
func (h *SensorHandlerImpl) HandleWriteSensorInfo(c echo.Context) error {
	info, err := h.gateway.Save(sensors.InfoFileName(h.deviceModel), storage.KindCSV, h.spy.InfoListing())
	if err != nil {
		return fromStorageError(sensors.InfoFileName(h.deviceModel), err)
	}
	return c.JSON(http.StatusCreated, info)
}
