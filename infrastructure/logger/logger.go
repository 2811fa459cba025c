// Package logger provides the structured logging interface used across the eagle-server service.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handed to every component.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal logs at fatal level and exits the process.
	Fatal(msg string, fields ...Field)
	// With returns a child logger carrying the given fields.
	With(fields ...Field) Logger
	Sync() error
}

// Field is a key-value pair attached to a log entry.
type Field = zap.Field

type zapLogger struct {
	logger *zap.Logger
}

// New builds a zap-backed Logger. JSON output is used unless the format is
// "console", which switches to the development encoder with colored levels.
func New(cfg Config) (Logger, error) {
	cfg.SetDefaults()

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == FormatConsole {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zapCfg.OutputPaths = cfg.OutputPaths
	zapCfg.Development = cfg.Development

	if cfg.Development {
		zapCfg.Sampling = nil
	}

	z, err := zapCfg.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &zapLogger{logger: z}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.logger.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.logger.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.logger.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.logger.Error(msg, fields...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.logger.Fatal(msg, fields...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: l.logger.With(fields...)}
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}
