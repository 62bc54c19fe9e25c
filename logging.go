package auth

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to the Logger interface.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		return defLogger{}
	}
	return zapLogger{sugar: z.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewZapProduction builds a zap logger for the given level and format
// ("json" or "console").
func NewZapProduction(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

func (l zapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l zapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}
