package logger

import (
	"context"
	"sync"
	"sync/atomic"
)

//nolint:gochecknoglobals // process-wide logger
var (
	global    atomic.Pointer[Logger]
	globalSet atomic.Bool
	fallback  = sync.OnceValue(func() Logger {
		l, err := New(Config{Level: levelDebug, Encoding: encPretty})
		if err != nil {
			panic("[logger]: failed to initialize default logger: " + err.Error())
		}
		return l
	})
)

// SetGlobal builds the process-wide logger from cfg. It panics when called
// twice or when cfg is invalid. Package-level calls made before SetGlobal
// use a debug level pretty logger.
func SetGlobal(cfg Config) {
	if !globalSet.CompareAndSwap(false, true) {
		panic("[logger]: SetGlobal can only be called once")
	}
	l, err := New(cfg)
	if err != nil {
		panic("[logger]: failed to initialize global logger: " + err.Error())
	}
	global.Store(&l)
}

func getGlobal() Logger {
	if l := global.Load(); l != nil {
		return *l
	}
	return fallback()
}

// Info logs a message at info level using the global logger.
func Info(msg any) { getGlobal().Info(msg) }

// Infof logs a formatted message at info level using the global logger.
func Infof(format string, args ...any) { getGlobal().Infof(format, args...) }

// Warnx logs an error at warn level using the global logger.
func Warnx(err error) { getGlobal().Warnx(err) }

// Errorx logs an error at error level using the global logger.
func Errorx(err error) { getGlobal().Errorx(err) }

// Fatalx logs an error at fatal level using the global logger and exits.
func Fatalx(err error) { getGlobal().Fatalx(err) }

// With returns the global logger with the key-value pairs added.
func With(keysAndValues ...any) Logger { return getGlobal().With(keysAndValues...) }

// WithContext returns the global logger enriched with request metadata.
func WithContext(ctx context.Context) Logger { return getGlobal().WithContext(ctx) }

// Named returns the global logger with name added to its scope.
func Named(name string) Logger { return getGlobal().Named(name) }

// Sync flushes the global logger.
func Sync() error { return getGlobal().Sync() }
