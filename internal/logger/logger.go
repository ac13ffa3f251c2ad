package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	reqctx "github.com/baechuer/user-service/internal/pkg/context"
)

const serviceName = "user-service"

var Logger zerolog.Logger

// Init configures the package and global loggers from LOG_LEVEL and LOG_FORMAT.
func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	Logger = New(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	zlog.Logger = Logger
}

// New builds a logger. level falls back to info, format is "json" or "console" (default).
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(lvl)
}

// WithCtx returns Logger annotated with the request id carried by ctx, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	if id := reqctx.GetRequestID(ctx); id != "" {
		l := Logger.With().Str("request_id", id).Logger()
		return &l
	}
	return &Logger
}
