// Package logging gives the client facade a structured logging
// collaborator: a zerolog-backed logger scoped to one client instance
// rather than a process singleton, since an SDK embedded in a caller's
// process shouldn't own global logging state.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the structured logging capability the client facade depends
// on. kv is an even-length list of alternating keys and values.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// NopLogger discards everything; it's Config's default so a caller who
// never wires a Logger pays no logging cost and gets no surprise stderr
// output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface, applying
// Sanitize to every kv pair before it reaches the sink.
type ZerologLogger struct {
	l zerolog.Logger
}

// New builds a console-formatted zerolog logger writing to out at the
// given level ("debug", "info", "warn", "error").
func New(out io.Writer, level string) ZerologLogger {
	if out == nil {
		out = os.Stderr
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	switch level {
	case "debug":
		logger = logger.Level(zerolog.DebugLevel)
	case "info":
		logger = logger.Level(zerolog.InfoLevel)
	case "warn":
		logger = logger.Level(zerolog.WarnLevel)
	default:
		logger = logger.Level(zerolog.ErrorLevel)
	}
	return ZerologLogger{l: logger}
}

func (z ZerologLogger) event(e *zerolog.Event, msg string, kv []any) {
	e.Fields(Sanitize(kv...)).Msg(msg)
}

func (z ZerologLogger) Debug(msg string, kv ...any) { z.event(z.l.Debug(), msg, kv) }
func (z ZerologLogger) Info(msg string, kv ...any)  { z.event(z.l.Info(), msg, kv) }
func (z ZerologLogger) Warn(msg string, kv ...any)  { z.event(z.l.Warn(), msg, kv) }
func (z ZerologLogger) Error(msg string, kv ...any) { z.event(z.l.Error(), msg, kv) }
