package auth

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// VerifyFunc asks the backend whether the current session is still valid
type VerifyFunc func(ctx context.Context) error

// Monitor signs a local session out after a period of inactivity or when
// periodic re-verification is rejected by the backend. Unreachable
// backends do not end the session.
type Monitor struct {
	idleTimeout    time.Duration
	verifyInterval time.Duration
	tick           time.Duration
	verify         VerifyFunc
	onExpire       func(reason error)
	now            func() time.Time
	log            *logger.Logger

	mu           sync.Mutex
	lastActivity time.Time
	lastVerify   time.Time
	expired      bool
	running      bool
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewMonitor creates a monitor. verify may be nil to disable re-verification.
func NewMonitor(idleTimeout, verifyInterval time.Duration, verify VerifyFunc, onExpire func(error)) *Monitor {
	tick := 30 * time.Second
	if idleTimeout > 0 && idleTimeout/4 < tick {
		tick = idleTimeout / 4
	}
	if tick <= 0 {
		tick = time.Second
	}
	now := time.Now()
	return &Monitor{
		idleTimeout:    idleTimeout,
		verifyInterval: verifyInterval,
		tick:           tick,
		verify:         verify,
		onExpire:       onExpire,
		now:            time.Now,
		log:            logger.Get().WithFields(logger.Component("session-monitor")),
		lastActivity:   now,
		lastVerify:     now,
	}
}

// Touch records user activity
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = m.now()
}

// Expired reports whether the monitor has already ended the session
func (m *Monitor) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

// Start runs the check loop until Stop or ctx is done
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.wg.Add(1)
	go m.run(ctx, m.stopChan)
}

// Stop ends the check loop and waits for it to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.stopChan)
	m.running = false
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if m.Check(ctx) {
				return
			}
		}
	}
}

// Check evaluates the session once and reports whether it has expired.
// onExpire runs at most once.
func (m *Monitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	if m.expired {
		m.mu.Unlock()
		return true
	}
	now := m.now()
	idle := m.idleTimeout > 0 && now.Sub(m.lastActivity) >= m.idleTimeout
	dueVerify := m.verify != nil && m.verifyInterval > 0 && now.Sub(m.lastVerify) >= m.verifyInterval
	if dueVerify {
		m.lastVerify = now
	}
	m.mu.Unlock()

	if idle {
		m.log.Info("Session idle, signing out", logger.Duration("idle_timeout", m.idleTimeout))
		return m.expire(apperrors.SessionExpired())
	}

	if dueVerify {
		err := m.verify(ctx)
		switch {
		case err == nil:
		case apperrors.IsUnauthorized(err):
			m.log.Info("Session rejected by config server")
			return m.expire(err)
		default:
			m.log.Debug("Session verification skipped", logger.Error(err))
		}
	}
	return false
}

func (m *Monitor) expire(reason error) bool {
	m.mu.Lock()
	if m.expired {
		m.mu.Unlock()
		return true
	}
	m.expired = true
	m.mu.Unlock()

	if m.onExpire != nil {
		m.onExpire(reason)
	}
	return true
}
