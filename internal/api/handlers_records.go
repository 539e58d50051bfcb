// handlers_records.go - Handlers reading stored records back
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sensor-spy/backend/internal/codec"
	"github.com/sensor-spy/backend/internal/models"
	"github.com/sensor-spy/backend/internal/records"
	"github.com/sensor-spy/backend/internal/storage"
)

const (
	defaultRecentLimit = 20
	defaultRangeLimit  = 1000
	maxRangeLimit      = 10000

	mimeMsgpack = "application/x-msgpack"
)

// RecordHandlerImpl implements the RecordHandler interface
type RecordHandlerImpl struct {
	gateway *records.Gateway
	archive SampleArchive
}

// NewRecordHandler creates a new record handler. archive may be nil when
// archiving is disabled; the sample endpoints then answer 503.
func NewRecordHandler(gateway *records.Gateway, archive SampleArchive) RecordHandler {
	return &RecordHandlerImpl{
		gateway: gateway,
		archive: archive,
	}
}

// pointsResponse is the parsed content of a point annotation file
type pointsResponse struct {
	File    string              `json:"file" msgpack:"file"`
	Points  models.PointMap     `json:"points" msgpack:"points"`
	Kept    int                 `json:"kept" msgpack:"kept"`
	Skipped int                 `json:"skipped" msgpack:"skipped"`
	Lines   []models.LineResult `json:"lines,omitempty" msgpack:"-"`
}

// HandleRecentFiles returns recently written files
func (h *RecordHandlerImpl) HandleRecentFiles(c echo.Context) error {
	limit := defaultRecentLimit
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	files, err := h.gateway.Store().List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// fileResponse is the metadata of a written file plus its location
type fileResponse struct {
	*models.FileInfo
	Path string `json:"path"`
}

// HandleGetFile returns metadata and location of a written file
func (h *RecordHandlerImpl) HandleGetFile(c echo.Context) error {
	name := c.Param("name")
	store := h.gateway.Store()

	info, err := store.Stat(name)
	if err != nil {
		return NewNotFoundError("file", name)
	}
	path, err := store.Path(name)
	if err != nil {
		return NewNotFoundError("file", name)
	}
	return c.JSON(http.StatusOK, fileResponse{FileInfo: info, Path: path})
}

func (h *RecordHandlerImpl) loadPoints(c echo.Context) (*pointsResponse, error) {
	name := c.Param("name")
	if name == "" {
		return nil, NewValidationError("name")
	}

	// lenient reads treat any failure as nothing read: the user is told,
	// and the map comes back empty
	var content *string
	if c.QueryParam("lenient") == "true" {
		content = h.gateway.Load(name)
	} else {
		var err error
		if content, err = h.gateway.LoadErr(name); err != nil {
			return nil, fromStorageError(name, err)
		}
	}

	var lines []models.LineResult
	if content != nil {
		lines = codec.ParsePointLines(*content)
	}
	resp := &pointsResponse{
		File:   storage.FileName(name, storage.KindCSV),
		Points: codec.ParsePointMap(content),
	}
	for _, l := range lines {
		if l.Status == models.LineKept {
			resp.Kept++
		} else {
			resp.Skipped++
		}
	}
	if c.QueryParam("lines") == "true" {
		resp.Lines = lines
	}
	return resp, nil
}

// HandleGetPoints reads a point annotation file and returns its point map.
// ?lines=true adds the per-line parse outcome; ?lenient=true answers a
// failed read with an empty map instead of an error.
func (h *RecordHandlerImpl) HandleGetPoints(c echo.Context) error {
	resp, err := h.loadPoints(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetPointsMsgpack is HandleGetPoints with a MessagePack body
func (h *RecordHandlerImpl) HandleGetPointsMsgpack(c echo.Context) error {
	resp, err := h.loadPoints(c)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(resp)
	if err != nil {
		return NewInternalError("failed to encode points", err)
	}
	return c.Blob(http.StatusOK, mimeMsgpack, data)
}

// HandleIngestSamples loads a sample stream file into the archive
func (h *RecordHandlerImpl) HandleIngestSamples(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("sample archive disabled")
	}
	name := c.Param("name")

	content, err := h.gateway.LoadErr(name)
	if err != nil {
		return fromStorageError(name, err)
	}

	result, err := h.archive.Ingest(c.Request().Context(), storage.FileName(name, storage.KindCSV), *content)
	if err != nil {
		return NewInternalError("failed to ingest samples", err)
	}
	return c.JSON(http.StatusCreated, result)
}

// HandleArchivedFiles lists the files present in the archive
func (h *RecordHandlerImpl) HandleArchivedFiles(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("sample archive disabled")
	}
	files, err := h.archive.Files(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to list archived files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleSampleStats returns summary statistics of an archived sample file
func (h *RecordHandlerImpl) HandleSampleStats(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("sample archive disabled")
	}
	file := storage.FileName(c.Param("name"), storage.KindCSV)

	stats, err := h.archive.Stats(c.Request().Context(), file)
	if err != nil {
		return fromArchiveError(file, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// HandleSampleRange returns archived samples with start <= ts <= end
func (h *RecordHandlerImpl) HandleSampleRange(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("sample archive disabled")
	}
	file := storage.FileName(c.Param("name"), storage.KindCSV)

	start, err := strconv.ParseInt(c.QueryParam("start"), 10, 64)
	if err != nil {
		return NewValidationError("start")
	}
	end, err := strconv.ParseInt(c.QueryParam("end"), 10, 64)
	if err != nil {
		return NewValidationError("end")
	}
	if end < start {
		return NewBadRequestError("end must not be before start", nil)
	}

	limit := defaultRangeLimit
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = min(n, maxRangeLimit)
	}

	samples, err := h.archive.Range(c.Request().Context(), file, start, end, limit)
	if err != nil {
		return fromArchiveError(file, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"file":    file,
		"samples": samples,
		"count":   len(samples),
	})
}
