package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bravo68web/confdash/internal/domain/models"
)

// MaskedValue replaces a secret value that is not revealed
const MaskedValue = "••••••••"

// VaultEditor edits a namespace vault one key at a time. The backend only
// accepts whole-map writes, so every change sends a full copy of the map.
type VaultEditor struct {
	api       *APIService
	namespace string
	email     string

	mu       sync.Mutex
	secrets  models.Secrets
	revealed map[string]bool
}

// NewVaultEditor creates an editor for the vault of namespace
func NewVaultEditor(api *APIService, namespace, email string) *VaultEditor {
	return &VaultEditor{
		api:       api,
		namespace: namespace,
		email:     email,
		secrets:   models.Secrets{},
		revealed:  make(map[string]bool),
	}
}

// Load fetches the vault
func (v *VaultEditor) Load(ctx context.Context) error {
	secrets, err := v.api.GetVaultSecrets(ctx, v.namespace, v.email)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.secrets = secrets
	return nil
}

// Secrets returns a copy of the last known map
func (v *VaultEditor) Secrets() models.Secrets {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.secrets.Clone()
}

// Set adds or changes one key. An empty message gets a generated one.
func (v *VaultEditor) Set(ctx context.Context, key, value, message string) error {
	key = strings.TrimSpace(key)
	if err := v.api.Validator().SecretKey(key); err != nil {
		return v.api.reject(err)
	}

	v.mu.Lock()
	verb := "Add"
	if _, ok := v.secrets[key]; ok {
		verb = "Update"
	}
	next := v.secrets.With(key, value)
	v.mu.Unlock()

	if message == "" {
		message = fmt.Sprintf("%s secret %s", verb, key)
	}
	return v.write(ctx, next, message)
}

// Delete removes one key and writes the remaining map
func (v *VaultEditor) Delete(ctx context.Context, key, message string) error {
	v.mu.Lock()
	next := v.secrets.Without(key)
	v.mu.Unlock()

	if message == "" {
		message = fmt.Sprintf("Delete secret %s", key)
	}
	if err := v.write(ctx, next, message); err != nil {
		return err
	}
	v.mu.Lock()
	delete(v.revealed, key)
	v.mu.Unlock()
	return nil
}

func (v *VaultEditor) write(ctx context.Context, next models.Secrets, message string) error {
	if err := v.api.UpdateVaultSecrets(ctx, v.namespace, v.email, message, next); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.secrets = next
	return nil
}

// ToggleReveal flips whether key is shown in clear text
func (v *VaultEditor) ToggleReveal(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.revealed[key] = !v.revealed[key]
}

// Display returns the value of key as it should be rendered
func (v *VaultEditor) Display(key string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.revealed[key] {
		return v.secrets[key]
	}
	return MaskedValue
}

// Revealed reports whether key is shown in clear text
func (v *VaultEditor) Revealed(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.revealed[key]
}
