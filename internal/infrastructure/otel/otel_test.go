package otel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bravo68web/confdash/internal/config"
)

type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func attrs(r sdklog.Record) map[string]log.Value {
	out := make(map[string]log.Value)
	r.WalkAttributes(func(kv log.KeyValue) bool {
		out[kv.Key] = kv.Value
		return true
	})
	return out
}

func TestZapCoreEmitsRecords(t *testing.T) {
	exp := &memoryExporter{}
	provider := NewProviderWithProcessor(nil, sdklog.NewSimpleProcessor(exp))
	l := zap.New(NewZapCore(provider, zapcore.InfoLevel))

	l.Debug("dropped")
	l.With(zap.String("component", "configserver")).Warn("Config server unreachable",
		zap.Float64("ratio", 0.5),
		zap.Error(errors.New("dial tcp: refused")),
		zap.Namespace("request"),
		zap.Int("status_code", 503),
	)

	if len(exp.records) != 1 {
		t.Fatalf("exported %d records, want 1", len(exp.records))
	}
	r := exp.records[0]
	if r.Body().AsString() != "Config server unreachable" {
		t.Errorf("body = %q", r.Body().AsString())
	}
	if r.Severity() != log.SeverityWarn {
		t.Errorf("severity = %v, want warn", r.Severity())
	}

	got := attrs(r)
	if got["component"].AsString() != "configserver" {
		t.Errorf("component = %v", got["component"])
	}
	if got["ratio"].AsFloat64() != 0.5 {
		t.Errorf("ratio = %v, want 0.5", got["ratio"])
	}
	if got["error"].AsString() != "dial tcp: refused" {
		t.Errorf("error = %v", got["error"])
	}
	if got["request.status_code"].AsInt64() != 503 {
		t.Errorf("request.status_code = %v", got["request.status_code"])
	}
}

func TestFromLogging(t *testing.T) {
	cfg := FromLogging(&config.LoggingConfig{
		Output: "otel",
		OTEL: config.OTELConfig{
			Endpoint: "collector:4317",
			Protocol: "grpc",
			Headers:  map[string]string{"x-team": "platform"},
		},
	}, "production")

	if !cfg.Enabled || cfg.UseHTTP || cfg.Endpoint != "collector:4317" {
		t.Errorf("FromLogging() = %+v", cfg)
	}
	if cfg.ServiceName != "confdash" || cfg.Headers["x-team"] != "platform" {
		t.Errorf("FromLogging() = %+v", cfg)
	}

	if FromLogging(&config.LoggingConfig{Output: "console"}, "").Enabled {
		t.Error("console output enabled OTEL")
	}
}

func TestNewLoggerWithoutOTEL(t *testing.T) {
	l, err := NewLogger(&config.LoggingConfig{Level: "debug", Output: "discard"}, false)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	l.Info("hello")
}
