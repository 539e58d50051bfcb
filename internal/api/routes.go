// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sensor-spy/backend/internal/records"
	"github.com/sensor-spy/backend/internal/sensors"
	"github.com/sensor-spy/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Gateway     *records.Gateway
	Spy         *sensors.Spy
	Captures    CaptureManager
	Archive     SampleArchive // nil when archiving is disabled
	Medium      storage.Medium
	DeviceModel string
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Sensor  SensorHandler
	Capture CaptureHandler
	Record  RecordHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Medium),
		Sensor:  NewSensorHandler(deps.Spy, deps.Gateway, deps.DeviceModel),
		Capture: NewCaptureHandler(deps.Captures),
		Record:  NewRecordHandler(deps.Gateway, deps.Archive),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Sensors
	apiGroup.GET("/sensors", handlers.Sensor.HandleListSensors)
	apiGroup.GET("/sensors/names", handlers.Sensor.HandleSensorNames)
	apiGroup.POST("/sensors/info", handlers.Sensor.HandleWriteSensorInfo)

	// Capture sessions
	captureGroup := apiGroup.Group("/capture")
	captureGroup.POST("", handlers.Capture.HandleStartCapture)
	captureGroup.GET("", handlers.Capture.HandleListCaptures)
	captureGroup.GET("/:id", handlers.Capture.HandleGetCapture)
	captureGroup.POST("/:id/samples", handlers.Capture.HandleAddSamples)
	captureGroup.POST("/:id/points", handlers.Capture.HandleAddPoints)
	captureGroup.POST("/:id/finish", handlers.Capture.HandleFinishCapture)

	// Stored records
	apiGroup.GET("/files/recent", handlers.Record.HandleRecentFiles)
	apiGroup.GET("/files/:name", handlers.Record.HandleGetFile)
	apiGroup.GET("/points/:name", handlers.Record.HandleGetPoints)
	apiGroup.GET("/points/:name/msgpack", handlers.Record.HandleGetPointsMsgpack)

	// Sample archive
	apiGroup.GET("/samples", handlers.Record.HandleArchivedFiles)
	apiGroup.POST("/samples/:name/ingest", handlers.Record.HandleIngestSamples)
	apiGroup.GET("/samples/:name/stats", handlers.Record.HandleSampleStats)
	apiGroup.GET("/samples/:name/range", handlers.Record.HandleSampleRange)
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	Logger         zerolog.Logger
	RequestLogging bool
}

// SetupMiddleware installs the error handler, panic recovery and request logging
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	logger := opts.Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !opts.RequestLogging {
				return true
			}
			// sample appends arrive at sensor rate
			path := c.Request().URL.Path
			return path == "/api/health" ||
				(c.Request().Method == http.MethodPost && strings.HasSuffix(path, "/samples"))
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Error != nil {
				ev = logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
}
