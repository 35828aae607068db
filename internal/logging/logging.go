// Package logging builds the demo's zap logger. The terminal belongs to the
// UI, so logs go to a size-rotated JSON file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	File  string
	Level string // debug, info, warn, error

	MaxSizeMB  int // default 10
	MaxBackups int // default 3
	MaxAgeDays int // default 28
}

// New returns a JSON file logger rotated by lumberjack.
func New(opt Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opt.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if opt.File == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opt.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if opt.MaxSizeMB == 0 {
		opt.MaxSizeMB = 10
	}
	if opt.MaxBackups == 0 {
		opt.MaxBackups = 3
	}
	if opt.MaxAgeDays == 0 {
		opt.MaxAgeDays = 28
	}

	rotator := &lumberjack.Logger{
		Filename:   opt.File,
		MaxSize:    opt.MaxSizeMB,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAgeDays,
		Compress:   true,
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(rotator), level)
	return zap.New(core, zap.AddCaller()), nil
}
