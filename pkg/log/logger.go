package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stderr, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ParseLevel converts a level name into a slog.Level, erroring on names
// it does not know. Callers handling user input should prefer this over
// ToLogLevel.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", level)
	}
}

func ToLogLevel(level string) slog.Level {
	l, err := ParseLevel(level)
	if err != nil {
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
	return l
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
