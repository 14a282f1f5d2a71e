package service

import "github.com/bravo68web/confdash/internal/domain/models"

// Notifier receives the success and error messages produced by backend calls.
// Each front-end supplies its own: flash messages for the web dashboard,
// a status line for the TUI and stderr for the CLI.
type Notifier interface {
	Notify(n models.Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(n models.Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n models.Notification) {
	f(n)
}
