package models

import "time"

// Credentials is the durable sign-in state of the CLI and TUI:
// the bearer token and the user it belongs to.
type Credentials struct {
	Token string `json:"authToken"`
	User  *User  `json:"user"`
}

// Session is a signed-in web dashboard session. The browser only holds ID;
// the bearer token never leaves the server.
type Session struct {
	ID        string         `json:"id" gorm:"primaryKey;size:64"`
	Token     string         `json:"-" gorm:"type:text;not null"`
	User      User           `json:"user" gorm:"serializer:json"`
	Flash     []Notification `json:"flash,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	LastSeen  time.Time      `json:"last_seen" gorm:"index"`
}

// TableName returns the table name for the Session model
func (Session) TableName() string {
	return "dashboard_sessions"
}

// PopFlash returns and clears the pending notifications
func (s *Session) PopFlash() []Notification {
	out := s.Flash
	s.Flash = nil
	return out
}
