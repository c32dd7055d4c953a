package utilities

import (
	"context"
	"os"
	"strings"

	"github.com/antonio-alexander/go-employee-directory/internal"

	"github.com/rs/zerolog"
)

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

type logger struct {
	zerolog.Logger
}

func atoLogLevel(a string) zerolog.Level {
	switch strings.ToLower(a) {
	default:
		return zerolog.ErrorLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	}
}

func NewLogger() interface {
	internal.Configurer
	Logger
} {
	return &logger{
		Logger: zerolog.New(os.Stdout).With().Timestamp().
			Logger().Level(zerolog.ErrorLevel),
	}
}

func (l *logger) Configure(envs map[string]string) error {
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.Logger = l.Logger.Level(atoLogLevel(logLevel))
	}
	return nil
}

func (l *logger) log(ctx context.Context, level zerolog.Level, format string, v ...any) {
	event := l.WithLevel(level)
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str("correlation_id", correlationId)
	}
	event.Msgf(format, v...)
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.ErrorLevel, format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.InfoLevel, format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.DebugLevel, format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.log(ctx, zerolog.TraceLevel, format, v...)
}
