// Package capture records sessions of sensor samples and point annotations
// and writes them to the storage medium when a session is finished.
package capture

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sensor-spy/backend/internal/codec"
	"github.com/sensor-spy/backend/internal/models"
	"github.com/sensor-spy/backend/internal/records"
	"github.com/sensor-spy/backend/internal/storage"
)

// MaxSessions limits concurrently recording sessions.
const MaxSessions = 16

// DefaultSessionTimeout applies when CleanupOldSessions gets a non-positive age.
const DefaultSessionTimeout = 60 * time.Minute

var (
	ErrSessionNotFound  = errors.New("capture session not found")
	ErrSessionClosed    = errors.New("capture session already finished")
	ErrTooManySessions  = errors.New("too many recording sessions")
	ErrInvalidName      = errors.New("session name must not be empty or contain ',' ':' or path separators")
	ErrInvalidPointName = errors.New("point name must not contain ',' ':' or line breaks")
	ErrNothingToPersist = errors.New("capture session holds no samples or points")
)

// Archiver receives every sample stream that was written successfully.
type Archiver interface {
	IngestSamples(file, content string) error
}

// Manager handles capture sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	codec    *codec.Codec
	gateway  *records.Gateway
	clock    clock.Clock
	logger   zerolog.Logger
	archiver Archiver
}

type sessionState struct {
	session     *models.CaptureSession
	samples     strings.Builder
	points      strings.Builder
	annotations strings.Builder
	lastTouched time.Time
}

// NewManager creates a capture manager writing through gateway.
func NewManager(c *codec.Codec, gateway *records.Gateway, clk clock.Clock, logger zerolog.Logger) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{
		sessions: make(map[string]*sessionState),
		codec:    c,
		gateway:  gateway,
		clock:    clk,
		logger:   logger,
	}
}

// SetArchiver registers an archiver for saved sample streams.
func (m *Manager) SetArchiver(a Archiver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiver = a
}

// Start opens a new recording session. name is the base of the file names.
func (m *Manager) Start(name string) (*models.CaptureSession, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, ",:/\\") {
		return nil, ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recording := 0
	for _, st := range m.sessions {
		if st.session.Status == models.SessionStatusRecording {
			recording++
		}
	}
	if recording >= MaxSessions {
		return nil, ErrTooManySessions
	}

	now := m.clock.Now()
	session := models.NewCaptureSession(uuid.New().String(), name, now)
	m.sessions[session.ID] = &sessionState{session: session, lastTouched: now}

	m.logger.Info().Str("session", session.ID).Str("name", name).Msg("capture started")
	copied := *session
	return &copied, nil
}

// recording returns the state of an open session. Callers hold m.mu.
func (m *Manager) recording(id string) (*sessionState, error) {
	st, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if st.session.Status != models.SessionStatusRecording {
		return nil, ErrSessionClosed
	}
	st.lastTouched = m.clock.Now()
	return st, nil
}

// AddSamples formats samples into the session's sample stream.
// Each line is stamped when it is added.
func (m *Manager) AddSamples(id string, samples ...models.SensorSample) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.recording(id)
	if err != nil {
		return 0, err
	}
	for _, s := range samples {
		st.samples.WriteString(m.codec.FormatSample(s))
	}
	st.session.SampleCount += len(samples)
	return st.session.SampleCount, nil
}

// AddPoints appends points to the session's point stream and annotations.
func (m *Manager) AddPoints(id string, points ...models.Point) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.recording(id)
	if err != nil {
		return 0, err
	}
	// names are written unescaped into name:x,y lines
	for _, p := range points {
		if strings.ContainsAny(p.Name, ",:\r\n") {
			return 0, fmt.Errorf("%q: %w", p.Name, ErrInvalidPointName)
		}
	}
	for _, p := range points {
		st.points.WriteString(m.codec.FormatPoint(p.Coords()))
		if p.Name != "" {
			st.annotations.WriteString(codec.FormatPointAnnotation(p))
		}
	}
	st.session.PointCount += len(points)
	return st.session.PointCount, nil
}

// Finish writes the session's files and closes it.
// The session is marked saved or error; it is never left recording.
// Saved samples are handed to the archiver after the lock is released.
func (m *Manager) Finish(id string) (*models.CaptureSession, error) {
	session, samples, archiver, err := m.finish(id)
	if session == nil {
		return nil, err
	}
	if err == nil && samples != "" && archiver != nil {
		if aerr := archiver.IngestSamples(session.SampleFile, samples); aerr != nil {
			m.logger.Warn().Err(aerr).Str("file", session.SampleFile).Msg("archive ingest failed")
		}
	}
	return session, err
}

func (m *Manager) finish(id string) (*models.CaptureSession, string, Archiver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.recording(id)
	if err != nil {
		return nil, "", nil, err
	}
	if st.samples.Len() == 0 && st.points.Len() == 0 {
		m.closeLocked(st, ErrNothingToPersist)
		copied := *st.session
		return &copied, "", nil, ErrNothingToPersist
	}

	write := func(suffix string, content *strings.Builder) (string, error) {
		if content.Len() == 0 {
			return "", nil
		}
		info, err := m.gateway.Save(st.session.Name+suffix, storage.KindCSV, content.String())
		if err != nil {
			return "", fmt.Errorf("write%s: %w", suffix, err)
		}
		return info.Name, nil
	}

	samples := st.samples.String()
	st.session.SampleFile, err = write(" samples", &st.samples)
	if err == nil {
		st.session.PointFile, err = write(" points", &st.points)
	}
	if err == nil {
		st.session.AnnotationFile, err = write(" annotations", &st.annotations)
	}

	m.closeLocked(st, err)
	copied := *st.session
	if err != nil {
		samples = ""
	}
	return &copied, samples, m.archiver, err
}

// closeLocked ends recording; the buffers are released. Callers hold m.mu.
func (m *Manager) closeLocked(st *sessionState, err error) {
	st.samples.Reset()
	st.points.Reset()
	st.annotations.Reset()

	if err != nil {
		st.session.Status = models.SessionStatusError
		st.session.Error = err.Error()
		m.logger.Error().Err(err).Str("session", st.session.ID).Msg("capture failed")
		return
	}
	st.session.Status = models.SessionStatusSaved
	m.logger.Info().Str("session", st.session.ID).Int("samples", st.session.SampleCount).
		Int("points", st.session.PointCount).Msg("capture saved")
}

func (m *Manager) snapshot(id string) *models.CaptureSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil
	}
	copied := *st.session
	return &copied
}

// Get returns a copy of a session.
func (m *Manager) Get(id string) (*models.CaptureSession, bool) {
	s := m.snapshot(id)
	return s, s != nil
}

// List returns all sessions, newest first.
func (m *Manager) List() []*models.CaptureSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.CaptureSession, 0, len(m.sessions))
	for _, st := range m.sessions {
		copied := *st.session
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].StartedAt.After(list[j].StartedAt)
	})
	return list
}

// CleanupOldSessions drops sessions untouched for longer than maxAge.
// Recording sessions are discarded without being written.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultSessionTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for id, st := range m.sessions {
		if now.Sub(st.lastTouched) > maxAge {
			delete(m.sessions, id)
			removed++
			m.logger.Info().Str("session", id).Str("status", string(st.session.Status)).Msg("capture session expired")
		}
	}
	return removed
}
