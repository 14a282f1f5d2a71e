package repository

import "github.com/bravo68web/confdash/internal/domain/models"

// CredentialRepository holds the signed-in token and user of a local client.
// Load returns nil credentials and no error when nobody is signed in.
type CredentialRepository interface {
	Load() (*models.Credentials, error)
	Save(creds *models.Credentials) error
	Clear() error
}
