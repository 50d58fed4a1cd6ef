// Package logger holds the process-wide zerolog logger.
//
// Console status for operators goes through fatih/color in the cli package;
// this logger carries the structured trail of what was executed. It logs at
// info level, and at debug level with --verbose.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls where the logger writes and how much.
type Config struct {
	Verbose bool
	Out     io.Writer
	NoColor bool
}

var (
	mu     sync.RWMutex
	global = zerolog.Nop()
)

// Setup replaces the global logger. Without Verbose, debug entries are dropped.
func Setup(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.Kitchen,
		NoColor:    cfg.NoColor,
	}).Level(level).With().Timestamp().Logger()

	mu.Lock()
	global = l
	mu.Unlock()

	l.Debug().Bool("verbose", cfg.Verbose).Msg("logger initialized")
	return l
}

// L returns the logger installed by the last Setup, or a no-op logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Reset discards all output again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	global = zerolog.Nop()
}
