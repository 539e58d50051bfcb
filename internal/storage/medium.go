package storage

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// MediumState is the mount state of the storage medium.
type MediumState string

const (
	MediumMounted   MediumState = "mounted"
	MediumReadOnly  MediumState = "mounted_ro"
	MediumUnmounted MediumState = "unmounted"
)

// ParseMediumState converts a config string to a MediumState.
func ParseMediumState(s string) (MediumState, error) {
	switch MediumState(strings.ToLower(strings.TrimSpace(s))) {
	case MediumMounted, "":
		return MediumMounted, nil
	case MediumReadOnly, "readonly", "ro":
		return MediumReadOnly, nil
	case MediumUnmounted:
		return MediumUnmounted, nil
	}
	return "", fmt.Errorf("unknown medium state: %q", s)
}

// Writable reports whether files may be written.
func (s MediumState) Writable() bool {
	return s == MediumMounted
}

// Readable reports whether files may be read.
func (s MediumState) Readable() bool {
	return s == MediumMounted || s == MediumReadOnly
}

// Medium reports the current state of the storage medium.
type Medium interface {
	State() MediumState
}

// StaticMedium is a Medium whose state is set explicitly.
type StaticMedium struct {
	state atomic.Value
}

// NewStaticMedium creates a StaticMedium in the given state.
func NewStaticMedium(state MediumState) *StaticMedium {
	m := &StaticMedium{}
	m.state.Store(state)
	return m
}

// State returns the current state.
func (m *StaticMedium) State() MediumState {
	return m.state.Load().(MediumState)
}

// Set changes the state.
func (m *StaticMedium) Set(state MediumState) {
	m.state.Store(state)
}
