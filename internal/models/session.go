package models

import "time"

// SessionStatus represents the status of a capture session.
type SessionStatus string

const (
	SessionStatusRecording SessionStatus = "recording"
	SessionStatusSaved     SessionStatus = "saved"
	SessionStatusError     SessionStatus = "error"
)

// CaptureSession represents one recording of samples and points.
type CaptureSession struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Status         SessionStatus `json:"status"`
	SampleCount    int           `json:"sampleCount"`
	PointCount     int           `json:"pointCount"`
	StartedAt      time.Time     `json:"startedAt"`
	SampleFile     string        `json:"sampleFile,omitempty"`
	PointFile      string        `json:"pointFile,omitempty"`
	AnnotationFile string        `json:"annotationFile,omitempty"` // named points as name:x,y lines
	Error          string        `json:"error,omitempty"`
}

// NewCaptureSession creates a new CaptureSession in recording status.
func NewCaptureSession(id, name string, startedAt time.Time) *CaptureSession {
	return &CaptureSession{
		ID:        id,
		Name:      name,
		Status:    SessionStatusRecording,
		StartedAt: startedAt,
	}
}
