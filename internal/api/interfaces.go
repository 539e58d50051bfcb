// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/sensor-spy/backend/internal/archive"
	"github.com/sensor-spy/backend/internal/models"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SensorHandler exposes the host's sensor list
type SensorHandler interface {
	HandleListSensors(c echo.Context) error
	HandleSensorNames(c echo.Context) error
	HandleWriteSensorInfo(c echo.Context) error
}

// CaptureHandler handles capture session operations
type CaptureHandler interface {
	HandleStartCapture(c echo.Context) error
	HandleListCaptures(c echo.Context) error
	HandleGetCapture(c echo.Context) error
	HandleAddSamples(c echo.Context) error
	HandleAddPoints(c echo.Context) error
	HandleFinishCapture(c echo.Context) error
}

// RecordHandler reads stored records back
type RecordHandler interface {
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleGetPoints(c echo.Context) error
	HandleGetPointsMsgpack(c echo.Context) error
	HandleIngestSamples(c echo.Context) error
	HandleArchivedFiles(c echo.Context) error
	HandleSampleStats(c echo.Context) error
	HandleSampleRange(c echo.Context) error
}

// CaptureManager defines the capture operations handlers need.
// This allows mocking in tests
type CaptureManager interface {
	Start(name string) (*models.CaptureSession, error)
	Get(id string) (*models.CaptureSession, bool)
	List() []*models.CaptureSession
	AddSamples(id string, samples ...models.SensorSample) (int, error)
	AddPoints(id string, points ...models.Point) (int, error)
	Finish(id string) (*models.CaptureSession, error)
}

// SampleArchive defines the archive queries handlers need
type SampleArchive interface {
	Ingest(ctx context.Context, file, content string) (*archive.IngestResult, error)
	Stats(ctx context.Context, file string) (*archive.Stats, error)
	Range(ctx context.Context, file string, startMs, endMs int64, limit int) ([]models.TimedSample, error)
	Files(ctx context.Context) ([]string, error)
}
