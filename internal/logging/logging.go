// Package logging provides debug logging gated by the --debug flag or the
// TASKFLOW_DEBUG environment variable. Output goes to a rotating file in
// the config directory so long-running watch sessions don't grow it
// unbounded.
package logging

import (
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.Mutex
	enabled bool
	logger  *log.Logger
)

// EnvEnabled returns true if debug mode is enabled via the TASKFLOW_DEBUG
// environment variable.
func EnvEnabled() bool {
	return os.Getenv("TASKFLOW_DEBUG") != ""
}

// Setup enables debug logging to the given file path. Safe to call more
// than once; the last call wins.
func Setup(path string, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = debug || EnvEnabled()
	if !enabled {
		logger = nil
		return
	}
	var sink io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}
	logger = log.New(sink, "", log.LstdFlags|log.Lmicroseconds)
}

// Enabled reports whether debug logging is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Debugf writes a formatted debug message when debug mode is enabled.
func Debugf(format string, args ...interface{}) {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
