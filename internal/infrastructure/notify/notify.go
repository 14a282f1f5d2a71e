// Package notify provides the Notifier implementations handed to the API
// service: a recorder for web requests, a zap logger sink, a dedup filter
// and fan-out.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/service"
	"github.com/bravo68web/confdash/pkg/logger"
)

// New builds a notification stamped with a fresh id and the current time
func New(sev models.Severity, msg string) models.Notification {
	return models.Notification{
		ID:       uuid.NewString(),
		Severity: sev,
		Message:  msg,
		Time:     time.Now(),
	}
}

// Recorder keeps every notification it receives
type Recorder struct {
	mu    sync.Mutex
	items []models.Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements service.Notifier
func (r *Recorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of what was recorded
func (r *Recorder) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Drain returns everything recorded and empties the recorder
func (r *Recorder) Drain() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// Log writes notifications to a zap logger
type Log struct {
	log *logger.Logger
}

// NewLog creates a Notifier that logs through l
func NewLog(l *logger.Logger) *Log {
	return &Log{log: l}
}

// Notify implements service.Notifier
func (l *Log) Notify(n models.Notification) {
	fields := []logger.Field{logger.Severity(string(n.Severity))}
	switch n.Severity {
	case models.SeverityError:
		l.log.Warn(n.Message, fields...)
	default:
		l.log.Info(n.Message, fields...)
	}
}

// Dedup drops a notification when the same severity and message were
// forwarded within the window.
type Dedup struct {
	next   service.Notifier
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDedup wraps next. A zero window uses two seconds.
func NewDedup(next service.Notifier, window time.Duration) *Dedup {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Dedup{next: next, window: window, now: time.Now, seen: make(map[string]time.Time)}
}

// Notify implements service.Notifier
func (d *Dedup) Notify(n models.Notification) {
	key := string(n.Severity) + "\x00" + n.Message
	now := d.now()

	d.mu.Lock()
	for k, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, k)
		}
	}
	if _, dup := d.seen[key]; dup {
		d.mu.Unlock()
		return
	}
	d.seen[key] = now
	d.mu.Unlock()

	d.next.Notify(n)
}

// Multi forwards every notification to each notifier in order
type Multi []service.Notifier

// Notify implements service.Notifier
func (m Multi) Notify(n models.Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}

// Discard drops everything
var Discard service.Notifier = service.NotifierFunc(func(models.Notification) {})
