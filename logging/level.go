package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is the level of a given logger.
type Level int

const (
	// DEBUG logs all messages.
	DEBUG Level = iota - 1
	// INFO logs Info+ messages.
	INFO
	// WARN logs Warn+ messages.
	WARN
	// ERROR logs only Error messages.
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	}
	return "unknown"
}

// AsZap converts the Level to its zapcore equivalent.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// LevelFromString parses a level name ("debug", "info", "warn", "error").
func LevelFromString(name string) (Level, error) {
	switch name {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, errors.Errorf("unknown log level %q", name)
}
