// Package logging builds the process logger.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the level and encoding of the logger.
type Options struct {
	Verbose bool // debug level
	Quiet   bool // warnings and errors only
	JSON    bool // production JSON encoding instead of console
}

// Level resolves the minimum enabled level; Verbose wins over Quiet.
func (o Options) Level() zapcore.Level {
	switch {
	case o.Verbose:
		return zapcore.DebugLevel
	case o.Quiet:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// New returns a logger writing to w.
func New(w io.Writer, opt Options) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if opt.JSON {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(opt.Level()))
	return zap.New(core)
}
