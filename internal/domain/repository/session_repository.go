package repository

import (
	"context"
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
)

// SessionRepository stores web dashboard sessions
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *models.Session) error

	// FindByID retrieves a session by its id
	FindByID(ctx context.Context, id string) (*models.Session, error)

	// Update persists LastSeen, Flash and Token changes
	Update(ctx context.Context, session *models.Session) error

	// Delete removes a session
	Delete(ctx context.Context, id string) error

	// List returns every stored session
	List(ctx context.Context) ([]*models.Session, error)

	// DeleteIdleSince removes sessions not seen since the cutoff and returns how many went
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}
