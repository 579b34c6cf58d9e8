package logger

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Log flags
const (
	LstdFlags     = log.LstdFlags
	Lmicroseconds = log.Lmicroseconds
)

// Logger wraps the standard log.Logger with a verbose switch for debug output
type Logger struct {
	*log.Logger
	verbose atomic.Bool
}

// New creates a new logger writing to stdout
func New() *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	}
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		Logger: log.New(w, "", log.LstdFlags),
	}
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// OpenFile creates a logger appending to path with microsecond timestamps.
// The returned closer releases the file.
func OpenFile(path string) (*Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	l := NewWriter(io.MultiWriter(os.Stdout, file))
	l.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return l, file, nil
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

// SetFlags sets the output flags for the logger
func (l *Logger) SetFlags(flag int) {
	l.Logger.SetFlags(flag)
}

// SetVerbose enables or disables Debugf output
func (l *Logger) SetVerbose(v bool) {
	l.verbose.Store(v)
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose.Load()
}

// Debugf logs only in verbose mode
func (l *Logger) Debugf(format string, v ...any) {
	if l.verbose.Load() {
		l.Printf("[debug] "+format, v...)
	}
}

// Warnf logs a warning
func (l *Logger) Warnf(format string, v ...any) {
	l.Printf("[warn] "+format, v...)
}

// Errorf logs an error
func (l *Logger) Errorf(format string, v ...any) {
	l.Printf("[error] "+format, v...)
}
