package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/logutils"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

// Levels lists the log levels understood by the level filter, lowest first.
var Levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

type simpleLogger struct {
	logger *log.Logger
}

// New creates a logger writing to stdout that drops messages below minLevel.
func New(minLevel string) Logger {
	return NewWithWriter(minLevel, os.Stdout)
}

// NewWithWriter creates a logger writing to w that drops messages below minLevel.
// An unknown level falls back to INFO.
func NewWithWriter(minLevel string, w io.Writer) Logger {
	filter := &logutils.LevelFilter{
		Levels:   Levels,
		MinLevel: parseLevel(minLevel),
		Writer:   w,
	}
	return &simpleLogger{
		logger: log.New(filter, "", log.LstdFlags|log.Lshortfile),
	}
}

func parseLevel(level string) logutils.LogLevel {
	l := logutils.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	for _, known := range Levels {
		if l == known {
			return l
		}
	}
	return "INFO"
}

// Error logs an error message with the 🔴 emoji.
func (l *simpleLogger) Error(msg string, err error) {
	l.logger.Output(2, fmt.Sprintf("[ERROR] 🔴 %s - %v", msg, err))
}

// Warn logs a warning message with the ⚠️ emoji.
func (l *simpleLogger) Warn(msg string) {
	l.logger.Output(2, fmt.Sprintf("[WARN] ⚠️ %s", msg))
}

// Info logs an informational message.
func (l *simpleLogger) Info(msg string) {
	l.logger.Output(2, fmt.Sprintf("[INFO] %s", msg))
}

// Debug logs a debug message.
func (l *simpleLogger) Debug(msg string) {
	l.logger.Output(2, fmt.Sprintf("[DEBUG] %s", msg))
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return NewWithWriter("ERROR", io.Discard)
}
