// Package notify delivers one-button user messages.
package notify

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Message is a titled notice acknowledged with a single OK.
type Message struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier shows a message that the user acknowledges with OK.
type Notifier interface {
	ShowMessageWithOK(title, message string)
}

// LogNotifier writes messages to a logger. Titles ending in "Error" log at warn level.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ShowMessageWithOK(title, message string) {
	ev := n.logger.Info()
	if strings.HasSuffix(title, "Error") {
		ev = n.logger.Warn()
	}
	ev.Str("title", title).Msg(message)
}

// Recorder keeps messages in memory until drained.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) ShowMessageWithOK(title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Title: title, Message: message})
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Drain returns the recorded messages and forgets them.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

// Multi fans a message out to several notifiers.
type Multi []Notifier

func (m Multi) ShowMessageWithOK(title, message string) {
	for _, n := range m {
		n.ShowMessageWithOK(title, message)
	}
}
