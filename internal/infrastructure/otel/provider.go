package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bravo68web/confdash/internal/config"
)

// ErrDisabled is returned by NewProvider when export is switched off
var ErrDisabled = errors.New("otel: log export disabled")

// Config describes where dashboard logs are exported
type Config struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Environment    string
	Insecure       bool
	// UseHTTP selects OTLP/HTTP; otherwise OTLP/gRPC
	UseHTTP      bool
	Headers      map[string]string
	BatchTimeout time.Duration
}

// DefaultConfig targets a local collector over plain HTTP
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "localhost:4318",
		ServiceName:    "confdash",
		ServiceVersion: "dev",
		Environment:    "development",
		Insecure:       true,
		UseHTTP:        true,
		Headers:        map[string]string{},
		BatchTimeout:   5 * time.Second,
	}
}

// FromLogging maps the logging section onto a provider config.
// Export is enabled only for the "otel" output.
func FromLogging(cfg *config.LoggingConfig, environment string) *Config {
	out := DefaultConfig()
	out.Enabled = cfg.Output == "otel"
	out.Environment = environment
	out.Insecure = cfg.OTEL.Insecure
	out.UseHTTP = cfg.OTEL.Protocol != "grpc"
	maps.Copy(out.Headers, cfg.OTEL.Headers)

	for dst, src := range map[*string]string{
		&out.Endpoint:       cfg.OTEL.Endpoint,
		&out.ServiceName:    cfg.OTEL.ServiceName,
		&out.ServiceVersion: cfg.OTEL.ServiceVersion,
	} {
		if src != "" {
			*dst = src
		}
	}
	return out
}

// Provider owns the SDK logger provider backing the zap bridge
type Provider struct {
	cfg *Config
	lp  *sdklog.LoggerProvider
}

// NewProvider dials the configured collector and starts a batch processor
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("otel: build resource: %w", err)
	}

	exporter, err := dialExporter(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("otel: create %s exporter: %w", transport(cfg), err)
	}

	var opts []sdklog.BatchProcessorOption
	if cfg.BatchTimeout > 0 {
		opts = append(opts, sdklog.WithExportTimeout(cfg.BatchTimeout))
	}
	return build(cfg, res, sdklog.NewBatchProcessor(exporter, opts...)), nil
}

// NewProviderWithProcessor wraps an existing processor, such as a simple
// processor around an in-memory exporter
func NewProviderWithProcessor(cfg *Config, processor sdklog.Processor) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return build(cfg, resource.Default(), processor)
}

func build(cfg *Config, res *resource.Resource, processor sdklog.Processor) *Provider {
	return &Provider{
		cfg: cfg,
		lp:  sdklog.NewLoggerProvider(sdklog.WithResource(res), sdklog.WithProcessor(processor)),
	}
}

func transport(cfg *Config) string {
	if cfg.UseHTTP {
		return "http"
	}
	return "grpc"
}

func dialExporter(ctx context.Context, cfg *Config) (sdklog.Exporter, error) {
	if cfg.UseHTTP {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(cfg.Headers))
		}
		return otlploghttp.New(ctx, opts...)
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure {
		conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlploggrpc.WithGRPCConn(conn))
	}
	return otlploggrpc.New(ctx, opts...)
}

// Logger returns the instrumentation-scoped logger for the service
func (p *Provider) Logger() log.Logger {
	return p.lp.Logger(p.cfg.ServiceName)
}

// Shutdown flushes and stops the processor
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.lp == nil {
		return nil
	}
	return p.lp.Shutdown(ctx)
}

// ForceFlush exports pending records
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p == nil || p.lp == nil {
		return nil
	}
	return p.lp.ForceFlush(ctx)
}

// Close shuts the provider down with a five second deadline
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Shutdown(ctx)
}

var _ io.Closer = (*Provider)(nil)
