// Package logging provides structured logging for the TaskFlow client.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level represents a log level.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s)
	default:
		return LevelInfo
	}
}

// Logger writes structured JSON log lines.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
}

// New creates a Logger writing to out at the given minimum level.
func New(out io.Writer, minLevel Level) *Logger {
	return &Logger{out: out, minLevel: minLevel}
}

var (
	global *Logger
	once   sync.Once
)

// Init initializes the global logger. Later calls are ignored.
func Init(out io.Writer, minLevel Level) {
	once.Do(func() {
		global = New(out, minLevel)
	})
}

// Get returns the global logger, initializing a stderr INFO logger on first
// use if Init was never called.
func Get() *Logger {
	if global == nil {
		Init(os.Stderr, LevelInfo)
	}
	return global
}

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Error     string         `json:"error,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

func (l *Logger) log(level Level, message string, err error, context map[string]any) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Context:   context,
	}
	if err != nil {
		e.Error = err.Error()
	}

	data, jsonErr := json.Marshal(e)
	if jsonErr != nil {
		log.Printf("failed to marshal log entry: %v", jsonErr)
		return
	}
	fmt.Fprintln(l.out, string(data))
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, context map[string]any) {
	l.log(LevelDebug, message, nil, context)
}

// Info logs an info message.
func (l *Logger) Info(message string, context map[string]any) {
	l.log(LevelInfo, message, nil, context)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, context map[string]any) {
	l.log(LevelWarn, message, nil, context)
}

// Error logs an error message.
func (l *Logger) Error(message string, err error, context map[string]any) {
	l.log(LevelError, message, err, context)
}

// Convenience functions using the global logger.

func Debug(message string, context map[string]any) { Get().Debug(message, context) }
func Info(message string, context map[string]any)  { Get().Info(message, context) }
func Warn(message string, context map[string]any)  { Get().Warn(message, context) }
func Error(message string, err error, context map[string]any) {
	Get().Error(message, err, context)
}
