package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init builds the process logger and installs it as the global and default
// context logger. Production output is JSON, development output is a
// human-readable console format.
func Init(isProduction bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	level := zerolog.DebugLevel
	if isProduction {
		level = zerolog.InfoLevel
	} else {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = l
	zerolog.DefaultContextLogger = &l
	return l
}

// Middleware attaches a request-scoped logger to the request context and
// writes one access log line per request.
func Middleware(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		l := base.With().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
