package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
	apperror "github.com/bravo68web/confdash/pkg/errors"
)

// SessionRepoImpl implements the SessionRepository interface using GORM
type SessionRepoImpl struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepoImpl instance
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &SessionRepoImpl{db: db}
}

// Create stores a new session
func (r *SessionRepoImpl) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("session already exists", err)
		}
		return apperror.DatabaseError("create session", err)
	}
	return nil
}

// FindByID retrieves a session by its id
func (r *SessionRepoImpl) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("session", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find session by id", err)
	}
	return &session, nil
}

// Update persists an existing session
func (r *SessionRepoImpl) Update(ctx context.Context, session *models.Session) error {
	result := r.db.WithContext(ctx).Save(session)
	if result.Error != nil {
		return apperror.DatabaseError("update session", result.Error)
	}
	return nil
}

// Delete removes a session
func (r *SessionRepoImpl) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return apperror.DatabaseError("delete session", err)
	}
	return nil
}

// List returns every stored session
func (r *SessionRepoImpl) List(ctx context.Context) ([]*models.Session, error) {
	var sessions []*models.Session
	if err := r.db.WithContext(ctx).Order("created_at").Find(&sessions).Error; err != nil {
		return nil, apperror.DatabaseError("list sessions", err)
	}
	return sessions, nil
}

// DeleteIdleSince removes sessions not seen since cutoff
func (r *SessionRepoImpl) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("last_seen < ?", cutoff).Delete(&models.Session{})
	if result.Error != nil {
		return 0, apperror.DatabaseError("delete idle sessions", result.Error)
	}
	return result.RowsAffected, nil
}
