package tui

import (
	"sync"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
)

// StatusLine is the notifier of the TUI. It keeps the latest notification
// until it is replaced or its TTL passes.
type StatusLine struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	current models.Notification
	set     bool
}

// NewStatusLine creates a status line. A zero ttl uses five seconds.
func NewStatusLine(ttl time.Duration) *StatusLine {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &StatusLine{ttl: ttl, now: time.Now}
}

// Notify implements service.Notifier
func (s *StatusLine) Notify(n models.Notification) {
	if n.Time.IsZero() {
		n.Time = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = n
	s.set = true
}

// Current returns the notification on display, if any
func (s *StatusLine) Current() (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return models.Notification{}, false
	}
	if s.now().Sub(s.current.Time) >= s.ttl {
		s.set = false
		return models.Notification{}, false
	}
	return s.current, true
}

// Clear removes the notification on display
func (s *StatusLine) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = false
}

// View renders the current notification on one line
func (s *StatusLine) View() string {
	n, ok := s.Current()
	if !ok {
		return ""
	}
	return severityStyle(n.Severity).Render(string(n.Severity)+":") + " " + n.Message
}
