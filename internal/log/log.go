// Package log is a tiny leveled logger wrapping the standard log
// package. It is opt-in: the zero value discards everything, so a
// conversion that never configures a logger pays no formatting cost.
package log

import (
	stdlog "log"
	"os"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// levelOff is above every real level; a Logger at this threshold
	// logs nothing and is the zero value's effective behavior.
	levelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "OFF"
	}
}

// Logger is a leveled wrapper around *log.Logger. The zero value is
// silent: out is nil, so nothing is written whatever the threshold
// (which is LevelDebug in the zero value).
type Logger struct {
	threshold Level
	out       *stdlog.Logger
}

// New returns a Logger that writes lines at or above threshold to
// os.Stderr, prefixed with a severity tag.
func New(threshold Level) *Logger {
	return &Logger{
		threshold: threshold,
		out:       stdlog.New(os.Stderr, "", stdlog.LstdFlags),
	}
}

// Discard is a Logger that never writes anything, used as the default
// when a caller does not configure logging.
func Discard() *Logger {
	return &Logger{threshold: levelOff}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || l.out == nil || level < l.threshold {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, format, args...) }

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...any) { l.log(LevelInfo, format, args...) }

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...any) { l.log(LevelWarn, format, args...) }

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, format, args...) }
