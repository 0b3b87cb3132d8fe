package utilities

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"

	"github.com/rs/zerolog"
)

type logger struct {
	sync.RWMutex
	zerolog zerolog.Logger
	config  struct {
		Level Level
	}
}

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	default:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger creates a logger that writes to stdout unless an io.Writer is
// provided; until Configure is called, nothing is logged.
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	var writer io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			writer = p
		}
	}
	return &logger{
		zerolog: zerolog.New(writer).With().Timestamp().Logger(),
	}
}

func (l *logger) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	l.config.Level = Error
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.Level = atoLogLevel(logLevel)
	}
	l.zerolog = l.zerolog.Level(l.config.Level.zerologLevel())
	return nil
}

func (l *logger) printf(ctx context.Context, level Level, format string, v ...any) {
	var event *zerolog.Event

	l.RLock()
	defer l.RUnlock()
	if l.config.Level < level {
		return
	}
	switch level {
	default:
		event = l.zerolog.WithLevel(level.zerologLevel())
	case Trace:
		//KIM: zerolog's global level (debug by default) filters trace events,
		// so they're written without a level and labelled by hand
		event = l.zerolog.Log().Str(zerolog.LevelFieldName, zerolog.TraceLevel.String())
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str("correlation_id", correlationId)
	}
	event.Msgf(format, v...)
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.printf(ctx, Error, format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.printf(ctx, Info, format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.printf(ctx, Debug, format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.printf(ctx, Trace, format, v...)
}
