package obs

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once  sync.Once
	base  *zap.Logger
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func logger() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		base = l
	})
	return base
}

// EnableDebug globally enables debug logs.
func EnableDebug(v bool) {
	if v {
		level.SetLevel(zap.DebugLevel)
	} else {
		level.SetLevel(zap.InfoLevel)
	}
}

type Fields map[string]any

func zapFields(f Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(msg string, f Fields)  { logger().Info(msg, zapFields(f)...) }
func Warn(msg string, f Fields)  { logger().Warn(msg, zapFields(f)...) }
func Error(msg string, f Fields) { logger().Error(msg, zapFields(f)...) }
func Debug(msg string, f Fields) { logger().Debug(msg, zapFields(f)...) }
