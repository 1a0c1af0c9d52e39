// Package tuilog provides file-based logging for daybook.
// The TUI owns stdout, so log lines go to a file chosen with --log.
package tuilog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Logger writes key/value log lines to a file.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	path    string
	enabled bool
	min     Level
	once    map[string]bool
}

// Log is the global logger instance.
var Log = &Logger{}

// Init opens path for appending and enables logging.
// An empty path leaves logging disabled.
func Init(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Log.SetOutput(f)
	Log.mu.Lock()
	Log.closer = f
	Log.path = path
	Log.mu.Unlock()
	Log.Info("Logger initialized", "path", path)
	return nil
}

// Path returns the file opened by Init, or "" when logging elsewhere.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// SetOutput directs the logger at w. A nil writer disables logging.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.enabled = w != nil
}

// SetLevel drops messages below min.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// Close closes the log file, if one was opened by Init.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	l.out = nil
	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		l.path = ""
		return err
	}
	return nil
}

// Enabled returns whether logging is active.
func (l *Logger) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Writer returns the underlying writer for use with other logging libraries.
func (l *Logger) Writer() io.Writer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return io.Discard
	}
	return l.out
}

func (l *Logger) log(level Level, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.min {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	b.WriteByte('\n')

	io.WriteString(l.out, b.String())
	if f, ok := l.out.(*os.File); ok {
		f.Sync()
	}
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.log(LevelDebug, msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.log(LevelInfo, msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.log(LevelWarn, msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.log(LevelError, msg, keyvals...)
}

// WarnOnce logs a warning the first time it is called with key and
// silently drops later calls with the same key.
func (l *Logger) WarnOnce(key string, msg string, keyvals ...any) {
	l.mu.Lock()
	if l.once == nil {
		l.once = make(map[string]bool)
	}
	seen := l.once[key]
	l.once[key] = true
	l.mu.Unlock()

	if !seen {
		l.Warn(msg, keyvals...)
	}
}

// Timed logs the duration of an operation. Usage:
//
//	defer tuilog.Log.Timed("operation name")()
func (l *Logger) Timed(operation string) func() {
	if !l.Enabled() {
		return func() {}
	}
	start := time.Now()
	l.Debug(operation, "status", "started")
	return func() {
		l.Debug(operation, "status", "completed", "duration", time.Since(start))
	}
}
