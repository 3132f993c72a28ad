package threads

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the package-level structured logging interface. External
// callers may install their own implementation with SetLogger; by
// default, log output goes through a zerolog-backed logger writing to
// stderr. Package-level configuration (rather than a per-Runtime field)
// matches eventloop/logging.go's SetStructuredLogger/getGlobalLogger
// pattern: every carrier shares one logging sink, and there is no
// per-instance configuration surface worth adding.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, err error, kv ...any)
}

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

// SetLogger installs the package-level logger used by this runtime.
func SetLogger(l Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = l
}

func getLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	if globalLogger.logger != nil {
		return globalLogger.logger
	}
	return defaultLogger
}

var defaultLogger Logger = &zerologLogger{z: zerolog.New(os.Stderr).With().Timestamp().Logger()}

// zerologLogger is the built-in Logger backed by zerolog.
type zerologLogger struct {
	z zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, kv ...any) { l.event(l.z.Debug(), kv).Msg(msg) }
func (l *zerologLogger) Info(msg string, kv ...any)  { l.event(l.z.Info(), kv).Msg(msg) }
func (l *zerologLogger) Warn(msg string, kv ...any)  { l.event(l.z.Warn(), kv).Msg(msg) }

func (l *zerologLogger) Error(msg string, err error, kv ...any) {
	l.event(l.z.Error().Err(err), kv).Msg(msg)
}

// event attaches alternating key/value pairs to e as typed fields where
// possible, falling back to zerolog's Interface for anything else.
func (l *zerologLogger) event(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case int32:
			e = e.Int32(key, v)
		case int64:
			e = e.Int64(key, v)
		case uint64:
			e = e.Uint64(key, v)
		case bool:
			e = e.Bool(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}
