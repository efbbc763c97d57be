// Package logging builds the zap logger used across the assistant.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hal9000y/gmail-assistant/internal/config"
)

// New builds a logger from cfg. A log file takes precedence; otherwise logs
// go to stderr, or nowhere when quiet is set (stdio MCP owns the terminal).
// The returned func flushes and closes the output.
func New(cfg config.LogConfig, quiet bool) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("zapcore.ParseLevel failed: %w", err)
	}

	if cfg.File == "" && quiet {
		return zap.NewNop(), func() {}, nil
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	out := zapcore.Lock(os.Stderr)
	closeOut := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("os.OpenFile failed: %w", err)
		}
		out = zapcore.Lock(f)
		closeOut = func() { _ = f.Close() }
	}

	logger := zap.New(zapcore.NewCore(enc, out, level), zap.AddCaller())

	return logger, func() {
		_ = logger.Sync()
		closeOut()
	}, nil
}
