package notify

import (
	"sync"

	"github.com/sonicalchemist/api/internal/logger"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient toast shown to the user.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Sink receives notifications. Enqueue must not block.
type Sink interface {
	Enqueue(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n Notification)

func (f SinkFunc) Enqueue(n Notification) {
	f(n)
}

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// Fanout forwards each notification to all sinks in order.
type Fanout []Sink

func (f Fanout) Enqueue(n Notification) {
	for _, s := range f {
		if s != nil {
			s.Enqueue(n)
		}
	}
}

// Recorder keeps notifications until they are drained. Pages use it to show
// toasts on the next render.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Enqueue(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of the pending notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Drain returns the pending notifications and clears them.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	Fields logger.Fields
}

func (s LogSink) Enqueue(n Notification) {
	fields := s.Fields.With(logger.Fields{
		"title":    n.Title,
		"severity": string(n.Severity),
	})
	if n.Severity == SeverityDestructive {
		logger.Warn("Notification: "+n.Message, fields)
		return
	}
	logger.Info("Notification: "+n.Message, fields)
}
