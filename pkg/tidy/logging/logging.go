// Package logging provides component loggers for the tidy CLI.
//
// Diagnostics go to stderr so they never interleave with the summary
// output the tool writes to stdout. Before Init is called, loggers are
// silent.
//
// Basic usage:
//
//	logging.Init("info")
//	logger := logging.Get("prune")
//	logger.Warn("no checksum", "path", path)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

type state struct {
	mu          sync.Mutex
	initialized bool
	level       log.Level
	loggers     map[string]*log.Logger
}

var globalState = &state{
	loggers: make(map[string]*log.Logger),
}

// Init configures the logging system with the given level.
func Init(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	globalState.level = parsed
	globalState.initialized = true

	// Recreate existing loggers at the new level.
	for component := range globalState.loggers {
		globalState.loggers[component] = newLogger(component, parsed)
	}

	return nil
}

// Get returns the logger for the given component.
// Before Init is called, the returned logger writes to io.Discard.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	level := globalState.level
	var logger *log.Logger
	if globalState.initialized {
		logger = newLogger(component, level)
	} else {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: component})
	}
	globalState.loggers[component] = logger
	return logger
}

func newLogger(component string, level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
		Prefix:          component,
	})
}
