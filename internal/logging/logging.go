// Package logging builds the loggers used across taskpilot. Short-lived
// CLI commands log to stderr; long-running servers write to a rotating
// file under the data directory.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a stderr logger with the given prefix.
func New(prefix string) *log.Logger {
	if prefix != "" {
		prefix = prefix + " "
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

// Discard returns a logger that drops everything. Useful as a default
// for components whose callers did not supply one.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// NewRotating returns a logger writing to dir/name.log with size-based
// rotation. Intended for serve and dashboard commands that run for days.
func NewRotating(dir, name string) *log.Logger {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	return log.New(io.MultiWriter(os.Stderr, w), "", log.LstdFlags)
}
