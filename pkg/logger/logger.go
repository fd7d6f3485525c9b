// Package logger is the zap-backed logger shared by the scheduler, the CLIs
// and the storage layer. A request's logger travels in its context and picks
// up the actor and trace ids stored there.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "stockroom/internal/core/context"
)

// Logger is a sugared zap logger.
type Logger struct {
	*zap.SugaredLogger
}

type ctxKey struct{}

// Config selects level and encoding.
type Config struct {
	Level       string // debug, info, warn, error; anything else means info
	Development bool   // console encoder with colours
	OutputPaths []string
}

// New builds a Logger. An unknown level is treated as info.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	z, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z.Sugar()}, nil
}

var (
	fallbackOnce sync.Once
	fallback     *Logger
)

// fallbackLogger is used when no logger was put in the context.
func fallbackLogger() *Logger {
	fallbackOnce.Do(func() {
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stdout"}
		z, err := zcfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			z = zap.NewNop()
		}
		fallback = &Logger{z.Sugar()}
	})
	return fallback
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// WithContext attaches the trace and actor ids found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	s := l.SugaredLogger
	if tc := appctx.GetTrace(ctx); tc != nil {
		s = s.With("trace_id", tc.TraceID, "request_id", tc.RequestID)
	}
	if actor := appctx.GetActor(ctx); actor != nil {
		s = s.With("user_id", actor.UserID)
		if actor.System {
			s = s.With("system_actor", true)
		}
	}
	return &Logger{s}
}

// WithComponent tags entries with the emitting binary or subsystem.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the context logger, or the stdout fallback, with the
// context's ids attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return fallbackLogger().WithContext(ctx)
}

func Debug(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Debugw(msg, kv...) }
func Info(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Infow(msg, kv...) }
func Warn(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Warnw(msg, kv...) }
func Error(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Errorw(msg, kv...) }
