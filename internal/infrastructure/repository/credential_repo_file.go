package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/domain/repository"
)

// FileCredentialRepo stores the CLI sign-in as JSON in a file readable only by its owner
type FileCredentialRepo struct {
	path string
}

// NewFileCredentialRepository creates a repository backed by path
func NewFileCredentialRepository(path string) repository.CredentialRepository {
	return &FileCredentialRepo{path: path}
}

// Load returns the stored credentials, or nil when the file does not exist
func (r *FileCredentialRepo) Load() (*models.Credentials, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// Save writes creds with 0600 permissions
func (r *FileCredentialRepo) Save(creds *models.Credentials) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// Clear removes the credentials file
func (r *FileCredentialRepo) Clear() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
