package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"

	"github.com/bravo68web/confdash/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	traceIDKey      = "trace_id"
)

// quietPaths are served without an access log line
var quietPaths = []string{"/healthz", "/static/", "/favicon.ico"}

// AccessLog tags every request with an id and logs one line per request.
// Dashboard requests also carry the namespace and file path they touched.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDKey, id)

		sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
		if sc.IsValid() {
			c.Set(traceIDKey, sc.TraceID().String())
		}

		if quiet(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		l := log
		if l == nil {
			l = logger.Get()
		}
		status := c.Writer.Status()
		if ce := l.Check(accessLevel(status), "HTTP Request"); ce != nil {
			ce.Write(accessFields(c, id, sc, time.Since(start))...)
		}
	}
}

func accessFields(c *gin.Context, id string, sc trace.SpanContext, latency time.Duration) []logger.Field {
	fields := []logger.Field{
		logger.RequestID(id),
		logger.Method(c.Request.Method),
		logger.Path(c.Request.URL.Path),
		logger.StatusCode(c.Writer.Status()),
		logger.Latency(latency),
		logger.ClientIP(c.ClientIP()),
		logger.BodySize(c.Writer.Size()),
	}
	if q := c.Request.URL.Query(); q.Has("reveal") {
		fields = append(fields, logger.Bool("revealed", q.Get("reveal") == "true"))
	} else if raw := c.Request.URL.RawQuery; raw != "" {
		fields = append(fields, logger.Query(raw))
	}
	if ns := c.Param("namespace"); ns != "" {
		fields = append(fields, logger.Namespace(ns))
	}
	if p := c.Query("path"); p != "" {
		fields = append(fields, logger.FilePath(p))
	}
	if sess := GetSession(c); sess != nil {
		fields = append(fields, logger.Username(sess.User.Username))
	}
	if sc.IsValid() {
		fields = append(fields, logger.TraceID(sc.TraceID().String()), logger.SpanID(sc.SpanID().String()))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, logger.Strings("errors", c.Errors.Errors()))
	}
	return fields
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func quiet(path string) bool {
	for _, p := range quietPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// GetRequestID returns the id AccessLog assigned to the request
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
