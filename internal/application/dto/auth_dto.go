package dto

import (
	"time"

	"github.com/bravo68web/confdash/internal/domain/models"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse returns the bearer token issued by the config server
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
}

// MeResponse describes the caller of an API request
type MeResponse struct {
	User      *models.User `json:"user,omitempty"`
	Email     string       `json:"email,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is returned by calls that only report success
type MessageResponse struct {
	Message string `json:"message"`
}
