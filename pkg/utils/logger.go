package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		panic(fmt.Errorf("error while parsing log level %q: %w", level, err))
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl == zapcore.DebugLevel {
		cfg.Development = true
	}

	l, err := cfg.Build()
	if err != nil {
		panic(fmt.Errorf("error while building logger: %w", err))
	}

	return l
}
