package logging

import (
	"io"
	"log"
	"os"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// A Logger writes leveled, source-tagged messages. Messages below the
// minimum level are discarded.
type Logger struct {
	source string
	min    int
	std    *log.Logger
}

// CreateLogger returns a Logger for a source (typically a node or worker
// identity), writing to stderr
func CreateLogger(source string, minLevel int) *Logger {
	return CreateLoggerTo(os.Stderr, source, minLevel)
}

// CreateLoggerTo returns a Logger for a source writing to an arbitrary sink
func CreateLoggerTo(w io.Writer, source string, minLevel int) *Logger {
	return &Logger{source: source, min: minLevel, std: log.New(w, "", log.LstdFlags)}
}

// Logf logs a message at a given level
func (l *Logger) Logf(level int, format string, args ...interface{}) {
	if level < l.min {
		return
	}
	l.std.Printf("%s: [%s] "+format, append([]interface{}{l.source, LogLevelToString(level)}, args...)...)
}

// Debugf logs a message at DebugLevel
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logf(DebugLevel, format, args...)
}

// Infof logs a message at InfoLevel
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(InfoLevel, format, args...)
}

// Warnf logs a message at WarnLevel
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(WarnLevel, format, args...)
}

// Errorf logs a message at ErrorLevel
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(ErrorLevel, format, args...)
}
