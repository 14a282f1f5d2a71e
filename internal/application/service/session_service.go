package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
	"github.com/bravo68web/confdash/internal/domain/service"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// SessionOptions bounds the life of a web session
type SessionOptions struct {
	// TTL caps the total lifetime
	TTL time.Duration
	// Idle ends a session after this long without a request
	Idle time.Duration
}

// SessionService maps browser session ids to backend tokens
type SessionService struct {
	repo repository.SessionRepository
	api  *APIService
	opts SessionOptions
	now  func() time.Time
	log  *logger.Logger
}

// NewSessionService creates a SessionService
func NewSessionService(repo repository.SessionRepository, api *APIService, opts SessionOptions) *SessionService {
	return &SessionService{
		repo: repo,
		api:  api,
		opts: opts,
		now:  time.Now,
		log:  logger.Get().WithFields(logger.Component("session-service")),
	}
}

// Authenticate signs in against the backend without opening a session
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (*models.Credentials, error) {
	return s.api.Login(ctx, username, password)
}

// Login signs in against the backend and opens a session
func (s *SessionService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	creds, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, creds)
}

// Open stores a new session for creds
func (s *SessionService) Open(ctx context.Context, creds *models.Credentials) (*models.Session, error) {
	now := s.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		Token:     creds.Token,
		CreatedAt: now,
		LastSeen:  now,
	}
	if creds.User != nil {
		sess.User = *creds.User
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.log.Info("Session opened", logger.SessionID(sess.ID), logger.Username(sess.User.Username))
	return sess, nil
}

// Resume returns the session for id and marks it as seen. Sessions that
// went idle, outlived their TTL or hold an expired token are removed and
// reported as expired.
func (s *SessionService) Resume(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, apperrors.Unauthorized("", apperrors.ErrUnauthorized)
	}
	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	now := s.now()
	if reason := s.expiredReason(sess, now); reason != "" {
		s.log.Info("Session expired", logger.SessionID(id), logger.String("reason", reason))
		_ = s.repo.Delete(ctx, id)
		return nil, apperrors.SessionExpired()
	}

	sess.LastSeen = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) expiredReason(sess *models.Session, now time.Time) string {
	switch {
	case s.opts.Idle > 0 && now.Sub(sess.LastSeen) > s.opts.Idle:
		return "idle"
	case s.opts.TTL > 0 && now.Sub(sess.CreatedAt) > s.opts.TTL:
		return "ttl"
	case !auth.TokenValid(sess.Token, now):
		return "token"
	}
	return ""
}

// API returns the API service authenticated as sess and reporting to notifier
func (s *SessionService) API(sess *models.Session, notifier service.Notifier) *APIService {
	api := s.api.WithToken(sess.Token)
	if notifier != nil {
		api = api.WithNotifier(notifier)
	}
	return api
}

// Bearer returns the API service for a raw bearer token presented by an API
// client. Tokens past their exp claim are refused without a backend call.
func (s *SessionService) Bearer(token string, notifier service.Notifier) (*APIService, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("", apperrors.ErrUnauthorized)
	}
	if !auth.TokenValid(token, s.now()) {
		return nil, apperrors.SessionExpired()
	}
	api := s.api.WithToken(token)
	if notifier != nil {
		api = api.WithNotifier(notifier)
	}
	return api, nil
}

// Flash queues notifications to show on the next page of sess
func (s *SessionService) Flash(ctx context.Context, sess *models.Session, ns ...models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	sess.Flash = append(sess.Flash, ns...)
	return s.repo.Update(ctx, sess)
}

// TakeFlash returns and clears the queued notifications of sess
func (s *SessionService) TakeFlash(ctx context.Context, sess *models.Session) []models.Notification {
	out := sess.PopFlash()
	if len(out) > 0 {
		if err := s.repo.Update(ctx, sess); err != nil {
			s.log.Warn("Failed to clear flash", logger.SessionID(sess.ID), logger.Error(err))
		}
	}
	return out
}

// Logout ends sess on the backend (best effort) and deletes it
func (s *SessionService) Logout(ctx context.Context, sess *models.Session) error {
	if err := s.api.WithToken(sess.Token).Logout(ctx); err != nil {
		s.log.Debug("Backend logout failed", logger.SessionID(sess.ID), logger.Error(err))
	}
	s.log.Info("Session closed", logger.SessionID(sess.ID), logger.Username(sess.User.Username))
	return s.repo.Delete(ctx, sess.ID)
}

// Sweep drops idle sessions and re-verifies the rest against the backend.
// Verification failures other than an explicit rejection keep the session.
func (s *SessionService) Sweep(ctx context.Context) (int64, error) {
	now := s.now()
	var removed int64
	if s.opts.Idle > 0 {
		n, err := s.repo.DeleteIdleSince(ctx, now.Add(-s.opts.Idle))
		if err != nil {
			return 0, err
		}
		removed += n
	}

	sessions, err := s.repo.List(ctx)
	if err != nil {
		return removed, err
	}
	for _, sess := range sessions {
		if s.expiredReason(sess, now) == "" {
			if _, err := s.api.WithToken(sess.Token).Verify(ctx); err == nil || !apperrors.IsUnauthorized(err) {
				continue
			}
		}
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			s.log.Warn("Failed to delete session", logger.SessionID(sess.ID), logger.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
