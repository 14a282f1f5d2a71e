package service

import (
	"context"
	"sync"
	"time"

	"github.com/bravo68web/confdash/pkg/logger"
)

// sessionSweep is the part of SessionService the sweeper drives
type sessionSweep interface {
	Sweep(ctx context.Context) (int64, error)
}

// SessionSweeper drops idle dashboard sessions on a fixed interval
type SessionSweeper struct {
	sessions sessionSweep
	interval time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionSweeper sweeps every interval, five minutes when zero
func NewSessionSweeper(sessions sessionSweep, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		log:      logger.Get().WithFields(logger.Component("session-sweeper")),
	}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel, s.done = cancel, make(chan struct{})
	go s.loop(ctx, s.done)
	s.log.Info("Session sweeper started", logger.Duration("interval", s.interval))
}

// Stop ends the loop and waits for an in-flight sweep
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *SessionSweeper) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) sweepOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.sessions.Sweep(ctx)
	switch {
	case err != nil:
		s.log.Error("Session sweep failed", logger.Error(err))
	case n > 0:
		s.log.Info("Idle sessions removed", logger.Int("count", int(n)))
	}
}
