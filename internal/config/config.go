package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Docs      DocsConfig      `mapstructure:"docs"`
	Storage   StorageConfig   `mapstructure:"storage"`
	SSH       SSHConfig       `mapstructure:"ssh"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the dashboard HTTP server configuration
type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Mode          string `mapstructure:"mode"` // debug, release, test
	SecureCookies bool   `mapstructure:"secure_cookies"`

	// AllowedOrigins feeds the CORS middleware for the JSON API
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// SessionTTL caps the lifetime of a dashboard session regardless of activity
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// InactivityTimeout signs a session out after this long without a request
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`

	// VerifyInterval is how often stored sessions are re-verified against the backend
	VerifyInterval time.Duration `mapstructure:"verify_interval"`
}

// BackendConfig points at the config-server REST API
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds local credential storage for the CLI and TUI
type AuthConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
}

// SessionsConfig selects where web dashboard sessions live
type SessionsConfig struct {
	Store string `mapstructure:"store"` // memory, database
}

// DatabaseConfig holds the session database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite file

	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	if d.IsSQLite() {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// IsSQLite returns true if the session database is a local sqlite file
func (d *DatabaseConfig) IsSQLite() bool {
	return strings.ToLower(d.Driver) == "sqlite"
}

// DashboardConfig holds presentation rules that mirror backend constraints
type DashboardConfig struct {
	NamespaceMinLength int `mapstructure:"namespace_min_length"`
	NamespaceMaxLength int `mapstructure:"namespace_max_length"`
}

// DocsConfig points at the repository whose README is shown on the docs page
type DocsConfig struct {
	Owner    string `mapstructure:"owner"`
	Repo     string `mapstructure:"repo"`
	Ref      string `mapstructure:"ref"`
	Fallback string `mapstructure:"fallback"`
	// APIURL overrides the GitHub API endpoint (enterprise installs, tests)
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
}

// StorageConfig holds the namespace export sink configuration
type StorageConfig struct {
	Type        string `mapstructure:"type"` // filesystem, s3, git
	BasePath    string `mapstructure:"base_path"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3Region    string `mapstructure:"s3_region"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3Endpoint  string `mapstructure:"s3_endpoint"` // For S3-compatible services
	S3Prefix    string `mapstructure:"s3_prefix"`
	// GitAuthor names the committer of git exports
	GitAuthor string `mapstructure:"git_author"`
}

// IsS3 returns true if the storage type is S3
func (s *StorageConfig) IsS3() bool {
	return strings.ToLower(s.Type) == "s3"
}

// IsGit returns true if exports are committed to a local git repository
func (s *StorageConfig) IsGit() bool {
	return strings.ToLower(s.Type) == "git"
}

// IsFilesystem returns true if the storage type is filesystem
func (s *StorageConfig) IsFilesystem() bool {
	return strings.ToLower(s.Type) == "filesystem" || s.Type == ""
}

// SSHConfig holds the SSH TUI server configuration
type SSHConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	HostKeyPath string `mapstructure:"host_key_path"`
	// AuthorizedKeysPath restricts who may open the TUI. Empty allows any key.
	AuthorizedKeysPath string `mapstructure:"authorized_keys_path"`
}

// Address returns the SSH server address
func (s *SSHConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string     `mapstructure:"level"`  // debug, info, warn, error
	Output   string     `mapstructure:"output"` // console, file, otel
	Format   string     `mapstructure:"format"` // json, console
	FilePath string     `mapstructure:"file_path"`
	OTEL     OTELConfig `mapstructure:"otel"`
}

// OTELConfig holds the OTLP log exporter configuration
type OTELConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	Protocol       string            `mapstructure:"protocol"` // http, grpc
	Insecure       bool              `mapstructure:"insecure"`
	ServiceName    string            `mapstructure:"service_name"`
	ServiceVersion string            `mapstructure:"service_version"`
	Headers        map[string]string `mapstructure:"headers"`
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is applied first when present.
// The config file is searched for in:
// 1. configPath, when given
// 2. ./config.yaml, ./configs/config.yaml, $HOME/.config/confdash/config.yaml
// Environment variables prefixed with CONFDASH_ always win.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("CONFDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "confdash"))
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration produced by the defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.session_ttl", "12h")
	v.SetDefault("server.inactivity_timeout", "30m")
	v.SetDefault("server.verify_interval", "5m")

	v.SetDefault("backend.base_url", "http://localhost:8080/config-server")
	v.SetDefault("backend.timeout", "5s")

	v.SetDefault("auth.credentials_file", filepath.Join(home, ".config", "confdash", "credentials.json"))

	v.SetDefault("sessions.store", "memory")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "confdash")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "confdash")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "./data/sessions.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("dashboard.namespace_min_length", 3)
	v.SetDefault("dashboard.namespace_max_length", 63)

	v.SetDefault("docs.owner", "BRAVO68WEB")
	v.SetDefault("docs.repo", "config-server")
	v.SetDefault("docs.ref", "")
	v.SetDefault("docs.fallback", defaultDocs)

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.base_path", "./data/exports")
	v.SetDefault("storage.git_author", "confdash")

	v.SetDefault("ssh.enabled", false)
	v.SetDefault("ssh.host", "0.0.0.0")
	v.SetDefault("ssh.port", 2323)
	v.SetDefault("ssh.host_key_path", "./data/ssh_host_ed25519")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "console")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file_path", "./logs/confdash.log")
	v.SetDefault("logging.otel.protocol", "http")
	v.SetDefault("logging.otel.endpoint", "localhost:4318")
	v.SetDefault("logging.otel.insecure", true)
	v.SetDefault("logging.otel.service_name", "confdash")
	v.SetDefault("logging.otel.service_version", "dev")
}

func overrideFromEnv(v *viper.Viper) {
	if dbPass := os.Getenv("CONFDASH_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if s3Key := os.Getenv("AWS_ACCESS_KEY_ID"); s3Key != "" {
		v.Set("storage.s3_access_key", s3Key)
	}
	if s3Secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); s3Secret != "" {
		v.Set("storage.s3_secret_key", s3Secret)
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		v.Set("docs.token", token)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.InactivityTimeout <= 0 {
		return fmt.Errorf("server inactivity timeout must be positive")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}

	if c.Dashboard.NamespaceMinLength < 1 {
		return fmt.Errorf("namespace min length must be at least 1")
	}
	if c.Dashboard.NamespaceMinLength > c.Dashboard.NamespaceMaxLength {
		return fmt.Errorf("namespace min length %d exceeds max length %d",
			c.Dashboard.NamespaceMinLength, c.Dashboard.NamespaceMaxLength)
	}

	switch strings.ToLower(c.Sessions.Store) {
	case "memory", "":
	case "database":
		switch strings.ToLower(c.Database.Driver) {
		case "postgres":
			if c.Database.Host == "" || c.Database.DBName == "" {
				return fmt.Errorf("database host and name are required for postgres sessions")
			}
		case "sqlite":
			if c.Database.Path == "" {
				return fmt.Errorf("database path is required for sqlite sessions")
			}
		default:
			return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("invalid session store: %s", c.Sessions.Store)
	}

	if c.Storage.IsS3() {
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when using S3 storage")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("S3 region is required when using S3 storage")
		}
	} else if c.Storage.IsFilesystem() || c.Storage.IsGit() {
		if c.Storage.BasePath == "" {
			return fmt.Errorf("storage base path is required for %s storage", c.Storage.Type)
		}
	} else {
		return fmt.Errorf("invalid storage type: %s", c.Storage.Type)
	}

	if c.SSH.Enabled {
		if c.SSH.Port <= 0 || c.SSH.Port > 65535 {
			return fmt.Errorf("invalid SSH port: %d", c.SSH.Port)
		}
	}

	switch c.Logging.Output {
	case "console", "file", "otel", "":
	default:
		return fmt.Errorf("invalid logging output: %s", c.Logging.Output)
	}

	return nil
}

// ServerAddress returns the HTTP server address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "debug" || c.Server.Mode == "development"
}

const defaultDocs = `# Config Server

The config server stores application configuration as YAML files grouped into
namespaces. Every change is a commit: edits carry a commit message and the commit
id of the revision they were based on, and the server rejects stale saves.

## Concepts

- **Namespace**: an isolated tree of configuration files, usually one per environment.
- **File**: a YAML document addressed by namespace, directory path and file name.
- **Vault**: a per-namespace map of secrets, replaced as a whole on every update.
- **Events**: the commit log of a namespace.
- **Notify**: delivery records for change notifications sent to subscribed apps.

The live documentation could not be fetched, so this built-in summary is shown instead.
`
