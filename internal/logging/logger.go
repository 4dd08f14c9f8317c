// Package logging builds the process zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	JSON  bool
	// File enables a rotated copy of the log when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func New(opt Options) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(opt.Level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var enc zapcore.Encoder
	if opt.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.TimeKey = "ts"
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)}
	if opt.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    atLeast(opt.MaxSizeMB, 100),
			MaxBackups: atLeast(opt.MaxBackups, 5),
			MaxAge:     atLeast(opt.MaxAgeDays, 14),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotator), lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return l, func() { _ = l.Sync() }
}

func atLeast(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
