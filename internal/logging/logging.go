// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing entries at or above level to w.
func New(level zapcore.Level, w io.Writer) *zap.Logger {
	return zap.New(newCore(level, zapcore.AddSync(w)))
}

// Setup builds the process logger on stderr, tags it with a fresh run id,
// installs it as the zap global and routes the standard library logger
// through it at debug level. Passing a zap.AtomicLevel lets the caller change
// the level afterwards. The returned function flushes the logger and undoes
// the redirection.
func Setup(level zapcore.LevelEnabler) (*zap.Logger, func()) {
	ws := &zapcore.BufferedWriteSyncer{WS: os.Stderr, FlushInterval: time.Second}
	logger := zap.New(newCore(level, ws)).With(zap.String("run", uuid.NewString()))

	undoGlobals := zap.ReplaceGlobals(logger)
	undoStdLog, err := zap.RedirectStdLogAt(logger, zapcore.DebugLevel)
	if err != nil {
		undoStdLog = zap.RedirectStdLog(logger)
	}

	return logger, func() {
		_ = logger.Sync()
		_ = ws.Stop()
		undoStdLog()
		undoGlobals()
	}
}

func newCore(level zapcore.LevelEnabler, ws zapcore.WriteSyncer) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), ws, level)
}
