package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
	apperror "github.com/bravo68web/confdash/pkg/errors"
)

// MemorySessionRepo keeps sessions in process memory. They are lost on restart.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewMemorySessionRepository creates an empty in-memory session store
func NewMemorySessionRepository() repository.SessionRepository {
	return &MemorySessionRepo{sessions: make(map[string]models.Session)}
}

// Create stores a new session
func (r *MemorySessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return apperror.Conflict("session already exists", nil)
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

// FindByID retrieves a session by its id
func (r *MemorySessionRepo) FindByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", apperror.ErrNotFound)
	}
	out := copySession(&s)
	return &out, nil
}

// Update persists an existing session
func (r *MemorySessionRepo) Update(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return apperror.NotFound("session", apperror.ErrNotFound)
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

// Delete removes a session
func (r *MemorySessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// List returns every stored session, oldest first
func (r *MemorySessionRepo) List(_ context.Context) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		cp := copySession(&s)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteIdleSince removes sessions not seen since cutoff
func (r *MemorySessionRepo) DeleteIdleSince(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func copySession(s *models.Session) models.Session {
	out := *s
	if s.Flash != nil {
		out.Flash = append([]models.Notification(nil), s.Flash...)
	}
	return out
}
