package dto

import (
	"github.com/bravo68web/confdash/internal/domain/models"
)

// VaultResponse lists the secrets of a namespace. Values are masked unless
// the request asked for them with reveal=true.
type VaultResponse struct {
	Namespace string         `json:"namespace"`
	Secrets   models.Secrets `json:"secrets"`
	Revealed  bool           `json:"revealed"`
}

// UpdateVaultRequest replaces the whole vault of a namespace
type UpdateVaultRequest struct {
	Secrets models.Secrets `json:"secrets" binding:"required"`
	Message string         `json:"message" binding:"required"`
}

// SetSecretRequest adds or changes one key. An empty message gets a generated one.
type SetSecretRequest struct {
	Value   string `json:"value"`
	Message string `json:"message"`
}
