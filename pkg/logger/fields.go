package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is a zap field
type Field = zap.Field

// Generic constructors, re-exported so callers import one package
var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Bool     = zap.Bool
	Duration = zap.Duration
	Error    = zap.Error
)

// Request fields written by the access log

func RequestID(id string) Field { return zap.String("request_id", id) }
func Method(m string) Field { return zap.String("method", m) }
func Path(p string) Field { return zap.String("path", p) }
func Query(q string) Field { return zap.String("query", q) }
func StatusCode(code int) Field { return zap.Int("status_code", code) }
func ClientIP(ip string) Field { return zap.String("client_ip", ip) }
func BodySize(n int) Field { return zap.Int("body_size", n) }
func TraceID(id string) Field { return zap.String("trace_id", id) }
func SpanID(id string) Field { return zap.String("span_id", id) }
func Latency(d time.Duration) Field { return zap.Duration("latency", d) }
func Component(name string) Field { return zap.String("component", name) }
func Username(name string) Field { return zap.String("username", name) }
func SessionID(id string) Field { return zap.String("session_id", id) }

// Config-server fields

// Endpoint is a backend path relative to the configured base URL
func Endpoint(path string) Field { return zap.String("endpoint", path) }

func Namespace(name string) Field { return zap.String("namespace", name) }

// FilePath is a path inside a namespace's virtual tree
func FilePath(p string) Field { return zap.String("file_path", p) }

func CommitID(id string) Field { return zap.String("commit_id", id) }

// Severity is a notification severity: info, warning or error
func Severity(s string) Field { return zap.String("severity", s) }
