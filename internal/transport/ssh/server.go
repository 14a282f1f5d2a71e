// Package ssh serves the terminal dashboard over SSH, one TUI per session.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	gossh "golang.org/x/crypto/ssh"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/tui"
	"github.com/bravo68web/confdash/pkg/logger"
)

type ctxKey string

const (
	credentialsKey ctxKey = "credentials"
	fingerprintKey ctxKey = "fingerprint"
)

// Server accepts SSH connections and runs the TUI on each of them.
//
// Password authentication is checked against the config server and the
// session starts signed in. When an authorized_keys file is configured,
// listed keys are accepted too and the TUI opens on its login screen.
type Server struct {
	server       *ssh.Server
	config       *config.SSHConfig
	app          tui.Options
	authenticate tui.LoginFunc
	log          *logger.Logger
}

// NewServer creates the SSH server. app is the template every session's
// TUI is built from; authenticate signs users in.
func NewServer(cfg *config.SSHConfig, app tui.Options, authenticate tui.LoginFunc) (*Server, error) {
	log := logger.Get().WithFields(logger.Component("ssh-server"))

	log.Info("Creating SSH server...",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("host_key_path", cfg.HostKeyPath),
	)

	s := &Server{
		config:       cfg,
		app:          app,
		authenticate: authenticate,
		log:          log,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPasswordAuth(s.passwordHandler),
		wish.WithMiddleware(
			bm.Middleware(s.teaHandler),
			activeterm.Middleware(),
			s.loggingMiddleware,
		),
	}
	if cfg.AuthorizedKeysPath != "" {
		opts = append(opts, wish.WithPublicKeyAuth(s.publicKeyHandler))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		log.Error("Failed to create SSH server", logger.Error(err))
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.server = server

	log.Info("SSH server created successfully", logger.String("address", cfg.Address()))
	return s, nil
}

// loggingMiddleware logs SSH session information
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		sessionID := sess.Context().SessionID()

		s.log.Info("SSH session started",
			logger.SessionID(sessionID),
			logger.String("remote_addr", sess.RemoteAddr().String()),
			logger.Username(sess.User()),
			logger.Bool("signed_in", credentialsFrom(sess.Context()) != nil),
		)

		next(sess)

		s.log.Info("SSH session ended",
			logger.SessionID(sessionID),
			logger.Username(sess.User()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}

// passwordHandler signs the user in on the config server with the SSH
// username and password
func (s *Server) passwordHandler(ctx ssh.Context, password string) bool {
	if s.authenticate == nil {
		return false
	}
	authCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	creds, err := s.authenticate(authCtx, ctx.User(), password)
	if err != nil {
		s.log.Warn("SSH password authentication failed",
			logger.Username(ctx.User()),
			logger.String("remote_addr", ctx.RemoteAddr().String()),
			logger.Error(err),
		)
		return false
	}
	ctx.SetValue(credentialsKey, creds)

	s.log.Info("SSH password authentication successful",
		logger.Username(ctx.User()),
		logger.String("remote_addr", ctx.RemoteAddr().String()),
	)
	return true
}

// publicKeyHandler accepts keys listed in the authorized_keys file. The
// file is read on every attempt so edits apply without a restart.
func (s *Server) publicKeyHandler(ctx ssh.Context, key ssh.PublicKey) bool {
	fingerprint := gossh.FingerprintSHA256(key)

	s.log.Debug("SSH public key attempt",
		logger.String("fingerprint", fingerprint),
		logger.String("remote_addr", ctx.RemoteAddr().String()),
		logger.String("key_type", key.Type()),
	)

	allowed, err := loadAuthorizedKeys(s.config.AuthorizedKeysPath)
	if err != nil {
		s.log.Error("Failed to read authorized keys",
			logger.String("path", s.config.AuthorizedKeysPath),
			logger.Error(err),
		)
		return false
	}
	for _, k := range allowed {
		if ssh.KeysEqual(k, key) {
			ctx.SetValue(fingerprintKey, fingerprint)
			s.log.Info("SSH public key accepted",
				logger.Username(ctx.User()),
				logger.String("fingerprint", fingerprint),
			)
			return true
		}
	}

	s.log.Warn("SSH public key rejected",
		logger.String("fingerprint", fingerprint),
		logger.String("remote_addr", ctx.RemoteAddr().String()),
	)
	return false
}

// loadAuthorizedKeys parses an OpenSSH authorized_keys file
func loadAuthorizedKeys(path string) ([]ssh.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys []ssh.PublicKey
	for len(bytes.TrimSpace(raw)) > 0 {
		key, _, _, rest, err := gossh.ParseAuthorizedKey(raw)
		if err != nil {
			if len(keys) > 0 {
				break
			}
			return nil, fmt.Errorf("parse authorized keys: %w", err)
		}
		keys = append(keys, key)
		raw = rest
	}
	return keys, nil
}

// teaHandler builds the TUI of one session
func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	opts := s.app
	opts.Credentials = credentialsFrom(sess.Context())
	opts.Login = s.authenticate

	app := tui.New(sess.Context(), opts)
	go func() {
		<-sess.Context().Done()
		app.Close()
	}()
	return app, append(bm.MakeOptions(sess), tea.WithAltScreen())
}

func credentialsFrom(ctx ssh.Context) *models.Credentials {
	creds, _ := ctx.Value(credentialsKey).(*models.Credentials)
	return creds
}

// ListenAndServe starts the SSH server
func (s *Server) ListenAndServe() error {
	s.log.Info("Starting SSH server", logger.String("address", s.config.Address()))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the SSH server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down SSH server...")

	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Error("Error shutting down SSH server", logger.Error(err))
		return err
	}

	s.log.Info("SSH server shutdown complete")
	return nil
}

// Address returns the server address
func (s *Server) Address() string {
	return s.config.Address()
}
