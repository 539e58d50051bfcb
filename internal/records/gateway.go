// Package records saves and loads record files, telling the user about
// every failure and every successful save.
package records

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/sensor-spy/backend/internal/models"
	"github.com/sensor-spy/backend/internal/notify"
	"github.com/sensor-spy/backend/internal/storage"
)

const (
	titleWriteError = "Write Error"
	titleReadError  = "Read Error"
	titleSaved      = "Save Succeed to"
)

// Gateway wraps a storage.Store with user notification.
type Gateway struct {
	store    storage.Store
	notifier notify.Notifier
	logger   zerolog.Logger
}

// NewGateway creates a Gateway.
func NewGateway(store storage.Store, notifier notify.Notifier, logger zerolog.Logger) *Gateway {
	return &Gateway{store: store, notifier: notifier, logger: logger}
}

// Store returns the underlying store.
func (g *Gateway) Store() storage.Store {
	return g.store
}

// Save writes content and reports the outcome to the user.
// The returned error is the store's error, unchanged.
func (g *Gateway) Save(name string, kind storage.Kind, content string) (*models.FileInfo, error) {
	info, err := g.store.Write(name, kind, content)
	if err != nil {
		if errors.Is(err, storage.ErrNotWritable) {
			g.notifier.ShowMessageWithOK(titleWriteError, "External Storage Not Writable!")
		} else {
			g.notifier.ShowMessageWithOK(titleWriteError, err.Error())
		}
		g.logger.Error().Err(err).Str("name", name).Msg("save failed")
		return nil, err
	}

	g.notifier.ShowMessageWithOK(titleSaved, info.Name)
	g.logger.Debug().Str("file", info.Name).Int64("size", info.Size).Msg("saved")
	return info, nil
}

// Load reads a file and reports failures to the user. Every failure
// collapses to nil, which codec.ParsePointMap treats as nothing read.
func (g *Gateway) Load(name string) *string {
	content, _ := g.LoadErr(name)
	return content
}

// LoadErr is Load that also returns the store error for callers that
// need to tell the failure kinds apart.
func (g *Gateway) LoadErr(name string) (*string, error) {
	content, err := g.store.Read(name)
	if err != nil {
		g.reportReadError(name, err)
		return nil, err
	}
	return &content, nil
}

func (g *Gateway) reportReadError(name string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotReadable):
		g.notifier.ShowMessageWithOK(titleReadError, "External Storage Not Readable!")
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrEmpty):
		g.notifier.ShowMessageWithOK(titleReadError, storage.FileName(name, storage.KindCSV)+" does not exist or is empty")
	default:
		g.notifier.ShowMessageWithOK(titleReadError, err.Error())
	}
	g.logger.Warn().Err(err).Str("name", name).Msg("load failed")
}
