package service

import (
	"context"
	"time"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
	"github.com/bravo68web/confdash/pkg/logger"
)

// AuthService manages the locally stored sign-in of the CLI and TUI
type AuthService struct {
	api   *APIService
	creds repository.CredentialRepository
	now   func() time.Time
	log   *logger.Logger
}

// NewAuthService creates an AuthService storing credentials in creds
func NewAuthService(api *APIService, creds repository.CredentialRepository) *AuthService {
	return &AuthService{
		api:   api,
		creds: creds,
		now:   time.Now,
		log:   logger.Get().WithFields(logger.Component("auth-service")),
	}
}

// Login signs in and persists the token and user
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Credentials, error) {
	creds, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.creds.Save(creds); err != nil {
		return nil, apperrors.StorageError("save credentials", err)
	}
	return creds, nil
}

// Current returns the stored credentials when their token is still valid.
// Expired or malformed tokens are cleared and reported as ErrSessionExpired.
func (s *AuthService) Current() (*models.Credentials, error) {
	creds, err := s.creds.Load()
	if err != nil {
		return nil, apperrors.StorageError("load credentials", err)
	}
	if creds == nil || creds.Token == "" {
		return nil, apperrors.Unauthorized("Not signed in. Run 'confdash login' first.", apperrors.ErrUnauthorized)
	}
	if !auth.TokenValid(creds.Token, s.now()) {
		s.log.Info("Stored token expired, clearing credentials")
		_ = s.creds.Clear()
		return nil, apperrors.SessionExpired()
	}
	return creds, nil
}

// IsLoggedIn reports whether valid credentials are stored
func (s *AuthService) IsLoggedIn() bool {
	_, err := s.Current()
	return err == nil
}

// API returns the API service authenticated with the stored token
func (s *AuthService) API() (*APIService, *models.Credentials, error) {
	creds, err := s.Current()
	if err != nil {
		return nil, nil, err
	}
	return s.api.WithToken(creds.Token), creds, nil
}

// Logout tells the backend (best effort) and always clears local credentials
func (s *AuthService) Logout(ctx context.Context) error {
	if creds, err := s.creds.Load(); err == nil && creds != nil && creds.Token != "" {
		if err := s.api.WithToken(creds.Token).Logout(ctx); err != nil {
			s.log.Debug("Backend logout failed", logger.Error(err))
		}
	}
	return s.creds.Clear()
}
