// Package zaplogger backs observability.Logger with zap's JSON encoder.
package zaplogger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is a zap level name; empty means info.
	Level string
	// File, when set, receives a copy of every entry next to stdout.
	File   string
	Fields []observability.Field
}

type logger struct{ l *zap.Logger }

// New builds a production JSON logger with keys ts and msg, RFC3339Nano
// timestamps and lowercase levels.
func New(opts Options) (observability.Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Level != "" {
		lvl, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("zaplogger: level %q: %w", opts.Level, err)
		}
		cfg.Level = lvl
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("zaplogger: log dir: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	cfg.InitialFields = make(map[string]any, len(opts.Fields))
	for _, f := range opts.Fields {
		cfg.InitialFields[f.Key] = f.Value
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("zaplogger: build: %w", err)
	}
	return &logger{l: l}, nil
}

// Wrap adapts an existing zap logger.
func Wrap(l *zap.Logger) observability.Logger { return &logger{l: l} }

func (z *logger) With(fields ...observability.Field) observability.Logger {
	if len(fields) == 0 {
		return z
	}
	return &logger{l: z.l.With(zapFields(fields)...)}
}

func (z *logger) Debug(msg string, fields ...observability.Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z *logger) Info(msg string, fields ...observability.Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z *logger) Warn(msg string, fields ...observability.Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z *logger) Error(msg string, fields ...observability.Field) { z.l.Error(msg, zapFields(fields)...) }

// Sync flushes l when it is backed by zap.
func Sync(l observability.Logger) error {
	if z, ok := l.(*logger); ok {
		return z.l.Sync()
	}
	return nil
}

func zapFields(fs []observability.Field) []zap.Field {
	out := make([]zap.Field, len(fs))
	for i, f := range fs {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}
