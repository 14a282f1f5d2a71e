package otel

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// ZapCore forwards zap entries to an OpenTelemetry logger. Fields are
// encoded with zap's own map encoder so every field type zap knows about
// arrives as a typed attribute; namespaces become dotted keys.
type ZapCore struct {
	zapcore.LevelEnabler
	provider *Provider
	logger   log.Logger
	fields   []zapcore.Field
}

// NewZapCore creates a core exporting entries at or above level
func NewZapCore(provider *Provider, level zapcore.Level) *ZapCore {
	return &ZapCore{
		LevelEnabler: level,
		provider:     provider,
		logger:       provider.Logger(),
	}
}

// NewCombinedCore tees local output and OTEL export
func NewCombinedCore(local zapcore.Core, provider *Provider, level zapcore.Level) zapcore.Core {
	return zapcore.NewTee(local, NewZapCore(provider, level))
}

// With implements zapcore.Core
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &clone
}

// Check implements zapcore.Core
func (c *ZapCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

// Write implements zapcore.Core
func (c *ZapCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var rec log.Record
	rec.SetTimestamp(entry.Time)
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(severity(entry.Level))
	rec.SetSeverityText(entry.Level.CapitalString())
	rec.SetBody(log.StringValue(entry.Message))

	attrs := entryAttributes(entry)
	attrs = flatten(attrs, "", enc.Fields)
	rec.AddAttributes(attrs...)

	c.logger.Emit(context.Background(), rec)
	return nil
}

// Sync flushes the provider
func (c *ZapCore) Sync() error {
	if c.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.provider.ForceFlush(ctx)
}

func entryAttributes(entry zapcore.Entry) []log.KeyValue {
	var attrs []log.KeyValue
	if entry.Caller.Defined {
		attrs = append(attrs,
			log.String("code.filepath", entry.Caller.TrimmedPath()),
			log.Int("code.lineno", entry.Caller.Line),
			log.String("code.function", entry.Caller.Function),
		)
	}
	if entry.LoggerName != "" {
		attrs = append(attrs, log.String("logger", entry.LoggerName))
	}
	if entry.Stack != "" {
		attrs = append(attrs, log.String("exception.stacktrace", entry.Stack))
	}
	return attrs
}

// flatten appends the encoded fields in key order, descending into zap namespaces
func flatten(attrs []log.KeyValue, prefix string, fields map[string]any) []log.KeyValue {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if nested, ok := fields[k].(map[string]any); ok {
			attrs = flatten(attrs, prefix+k+".", nested)
			continue
		}
		attrs = append(attrs, log.KeyValue{Key: prefix + k, Value: value(fields[k])})
	}
	return attrs
}

func value(v any) log.Value {
	switch x := v.(type) {
	case string:
		return log.StringValue(x)
	case bool:
		return log.BoolValue(x)
	case int:
		return log.IntValue(x)
	case int64:
		return log.Int64Value(x)
	case int32:
		return log.Int64Value(int64(x))
	case int16:
		return log.Int64Value(int64(x))
	case int8:
		return log.Int64Value(int64(x))
	case uint64:
		return log.Int64Value(int64(x))
	case uint32:
		return log.Int64Value(int64(x))
	case uint16:
		return log.Int64Value(int64(x))
	case uint8:
		return log.Int64Value(int64(x))
	case uintptr:
		return log.Int64Value(int64(x))
	case float64:
		return log.Float64Value(x)
	case float32:
		return log.Float64Value(float64(x))
	case time.Time:
		return log.StringValue(x.Format(time.RFC3339Nano))
	case time.Duration:
		return log.StringValue(x.String())
	case []byte:
		return log.BytesValue(x)
	case []any:
		vals := make([]log.Value, len(x))
		for i, e := range x {
			vals[i] = value(e)
		}
		return log.SliceValue(vals...)
	case map[string]any:
		return log.MapValue(flatten(nil, "", x)...)
	case nil:
		return log.Value{}
	default:
		return log.StringValue(fmt.Sprint(x))
	}
}

func severity(level zapcore.Level) log.Severity {
	switch level {
	case zapcore.DebugLevel:
		return log.SeverityDebug
	case zapcore.InfoLevel:
		return log.SeverityInfo
	case zapcore.WarnLevel:
		return log.SeverityWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel:
		return log.SeverityError
	case zapcore.PanicLevel, zapcore.FatalLevel:
		return log.SeverityFatal
	default:
		return log.SeverityInfo
	}
}

var _ zapcore.Core = (*ZapCore)(nil)
