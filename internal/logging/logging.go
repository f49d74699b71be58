// Package logging builds the root zerolog logger and forwards events to an external sink.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Verbosity selects how much the pipeline reports
type Verbosity string

const (
	Quiet   Verbosity = "quiet"
	Normal  Verbosity = "normal"
	Verbose Verbosity = "verbose"
)

// Level returns the most detailed level the verbosity allows
func (v Verbosity) Level() zerolog.Level {
	switch v {
	case Quiet:
		return zerolog.WarnLevel
	case Verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config holds logger settings
type Config struct {
	Level     string    `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format    string    `yaml:"format" default:"console" validate:"oneof=console json"`
	Verbosity Verbosity `yaml:"verbosity" default:"normal" validate:"oneof=quiet normal verbose"`
}

// Event is a log record handed to a Sink
type Event struct {
	Level   zerolog.Level
	Message string
	Context map[string]any
}

// Sink receives log events, e.g. a notification service
type Sink interface {
	Send(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

// Send calls f
func (f SinkFunc) Send(e Event) { f(e) }

// New builds a logger writing to out. The effective level is the more restrictive of Level
// and what Verbosity allows. Events at SinkLevel and above are also sent to sink when set.
func New(cfg Config, out io.Writer, sink Sink) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	if v := cfg.Verbosity.Level(); v > level {
		level = v
	}
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	var w io.Writer = out
	if sink != nil {
		w = zerolog.MultiLevelWriter(out, &sinkWriter{sink: sink, min: SinkLevel})
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// SinkLevel is the lowest level forwarded to a Sink
var SinkLevel = zerolog.WarnLevel

// sinkWriter decodes the JSON records zerolog produces and forwards them
type sinkWriter struct {
	sink Sink
	min  zerolog.Level
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (w *sinkWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min || level == zerolog.NoLevel {
		return len(p), nil
	}
	fields := map[string]any{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return len(p), nil
	}
	msg, _ := fields[zerolog.MessageFieldName].(string)
	delete(fields, zerolog.MessageFieldName)
	delete(fields, zerolog.LevelFieldName)
	delete(fields, zerolog.TimestampFieldName)
	w.sink.Send(Event{Level: level, Message: msg, Context: fields})
	return len(p), nil
}
