package injectable

import (
	"context"
	"fmt"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/repository"
	domainservice "github.com/bravo68web/confdash/internal/domain/service"
	"github.com/bravo68web/confdash/internal/infrastructure/configserver"
	"github.com/bravo68web/confdash/internal/infrastructure/database"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	infrarepo "github.com/bravo68web/confdash/internal/infrastructure/repository"
	"github.com/bravo68web/confdash/internal/infrastructure/storage"
	"github.com/bravo68web/confdash/internal/validation"
	"github.com/bravo68web/confdash/pkg/logger"
)

// Dependencies holds everything the front-ends share
type Dependencies struct {
	// Backend access
	Client    *configserver.Client
	Validator *validation.Validator
	API       *service.APIService

	// Web sessions
	DB       *database.Database
	Sessions *service.SessionService
	Sweeper  *service.SessionSweeper

	// CLI and TUI sign-in
	Credentials repository.CredentialRepository
	Auth        *service.AuthService

	Storage domainservice.ExportStorage
	Export  *service.ExportService
	Docs    *service.DocsService
}

// LoadDependencies wires the services for cfg. The database is only opened
// when sessions are stored there.
func LoadDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log := logger.Get().WithFields(logger.Component("dependencies"))

	client := configserver.New(&cfg.Backend)
	validator := validation.New(cfg.Dashboard.NamespaceMinLength, cfg.Dashboard.NamespaceMaxLength)
	api := service.NewAPIService(client, validator, notify.NewLog(log))

	deps := &Dependencies{
		Client:    client,
		Validator: validator,
		API:       api,
	}

	var sessionRepo repository.SessionRepository
	switch cfg.Sessions.Store {
	case "database":
		db, err := database.NewDatabase(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		deps.DB = db
		sessionRepo = infrarepo.NewSessionRepository(db.DB())
	default:
		sessionRepo = infrarepo.NewMemorySessionRepository()
	}

	deps.Sessions = service.NewSessionService(sessionRepo, api, service.SessionOptions{
		TTL:  cfg.Server.SessionTTL,
		Idle: cfg.Server.InactivityTimeout,
	})
	deps.Sweeper = service.NewSessionSweeper(deps.Sessions, cfg.Server.VerifyInterval)

	deps.Credentials = infrarepo.NewFileCredentialRepository(cfg.Auth.CredentialsFile)
	deps.Auth = service.NewAuthService(api, deps.Credentials)

	store, err := storage.NewFactory(&cfg.Storage).Create(ctx)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to initialize export storage: %w", err)
	}
	deps.Storage = store
	deps.Export = service.NewExportService(store)
	deps.Docs = service.NewDocsService(cfg.Docs, nil)

	log.Debug("Dependencies loaded",
		logger.String("backend", client.BaseURL()),
		logger.String("sessions", cfg.Sessions.Store),
		logger.String("storage", store.Type()),
	)
	return deps, nil
}

// Close releases the database connection, if any
func (d *Dependencies) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			logger.Warn("Failed to close database", logger.Error(err))
		}
	}
}
