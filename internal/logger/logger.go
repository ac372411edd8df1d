package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Init configures the singleton with level and format. Only the first call
// of Init or Get takes effect.
func Init(level, format string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, format)
	})
	return globalLogger
}

// Get returns the singleton logger, initializing a console logger at level
// if Init was not called first.
func Get(level string) *Logger {
	return Init(level, FormatConsole)
}

// New builds a standalone logger, e.g. for the seeder.
func New(level, format string) *Logger {
	return newZapLogger(level, format)
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
