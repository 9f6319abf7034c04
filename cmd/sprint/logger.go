package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-skillsprint"
)

var _ skillsprint.Logger = (*zapLogger)(nil)

// zapLogger adapts a sugared zap logger to the printf style Logger
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newLogger(level string, w io.Writer) (*zapLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		lvl,
	)

	return &zapLogger{sugar: zap.New(core).Named("sprint").Sugar()}, nil
}

func (l *zapLogger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *zapLogger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *zapLogger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *zapLogger) Sync() {
	_ = l.sugar.Sync()
}
