package log

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// zerologLogger implements Logger on top of a zerolog.Logger.
type zerologLogger struct {
	zl zerolog.Logger
}

// zerologProvider implements LoggerProvider with a zerolog backend.
type zerologProvider struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

var (
	defaultProvider LoggerProvider
	providerMu      sync.Mutex
)

// NewProvider creates a LoggerProvider that writes JSON lines to out at the
// given minimum level.
func NewProvider(out io.Writer, level Level) LoggerProvider {
	return &zerologProvider{out: out, level: level}
}

// SetProvider replaces the process-wide default provider. Intended for the
// CLI entry point and for tests.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger. The first call installs a provider
// writing JSON to stderr at info level.
func GetLogger() Logger {
	providerMu.Lock()
	defer providerMu.Unlock()
	if defaultProvider == nil {
		defaultProvider = NewProvider(os.Stderr, LevelInfo)
	}
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a default-provider logger tagged with a
// component name.
func GetLoggerWithName(name string) Logger {
	GetLogger() // ensure provider exists
	providerMu.Lock()
	defer providerMu.Unlock()
	return defaultProvider.GetLoggerWithName(name)
}

func (p *zerologProvider) newZerolog() zerolog.Logger {
	zl := zerolog.New(p.out).With().Timestamp().Logger()
	return zl.Level(toZerologLevel(p.level))
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *zerologProvider) GetLogger() Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &zerologLogger{zl: p.newZerolog()}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With("component", name)
}

// SetLevel implements LoggerProvider.SetLevel. Loggers created afterwards
// use the new level.
func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// Level, defaulting to info for unknown names.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debug implements Logger.Debug.
func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Info implements Logger.Info.
func (l *zerologLogger) Info(msg string, fields ...any) {
	l.emit(l.zl.Info(), msg, fields)
}

// Warn implements Logger.Warn.
func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error implements Logger.Error.
func (l *zerologLogger) Error(msg string, fields ...any) {
	l.emit(l.zl.Error(), msg, fields)
}

// With implements Logger.With.
func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	i := 0
	for i < len(fields) {
		key, value, next, ok := nextField(fields, i)
		i = next
		if !ok {
			continue
		}
		ctx = withValue(ctx, key, value)
	}
	return &zerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

// emit attaches the field list to the zerolog event and sends it. A bare
// error value in the field list is attached under ErrAttrKey together with
// its cockroachdb stack trace when one exists.
func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	i := 0
	for i < len(fields) {
		// A lone error slots in without a key.
		if err, ok := fields[i].(error); ok {
			e = e.AnErr(ErrAttrKey, err)
			if st := extractStacktrace(err); st != "" {
				e = e.Str(StacktraceAttrKey, st)
			}
			i++
			continue
		}
		key, value, next, ok := nextField(fields, i)
		i = next
		if !ok {
			continue
		}
		e = eventValue(e, key, value)
	}
	e.Msg(msg)
}

// nextField pulls a key-value pair from fields starting at i. A trailing key
// without a value is dropped.
func nextField(fields []any, i int) (key string, value any, next int, ok bool) {
	k, isString := fields[i].(string)
	if !isString || i+1 >= len(fields) {
		return "", nil, i + 1, false
	}
	return k, fields[i+1], i + 2, true
}

func eventValue(e *zerolog.Event, key string, value any) *zerolog.Event {
	switch v := value.(type) {
	case error:
		e = e.AnErr(key, v)
		if st := extractStacktrace(v); st != "" {
			e = e.Str(StacktraceAttrKey, st)
		}
		return e
	case zerolog.LogObjectMarshaler:
		return e.Object(key, v)
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case float64:
		return e.Float64(key, v)
	case bool:
		return e.Bool(key, v)
	case time.Duration:
		return e.Dur(key, v)
	default:
		return e.Interface(key, v)
	}
}

func withValue(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	default:
		return ctx.Interface(key, v)
	}
}

// extractStacktrace pulls the first safe detail (the encoded stack trace)
// out of a cockroachdb/errors error.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
