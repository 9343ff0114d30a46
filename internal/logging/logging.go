// Package logging wraps zap with the process-wide logger used by every
// pipeline stage.
package logging

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLog *zap.Logger

// Init builds the process-wide logger at the given level, tagged with a
// fresh run id so log lines from a single invocation can be grepped out
// of a shared log file. Called once per invocation from the root
// command's PersistentPreRunE.
func Init(level zapcore.Level) error {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("Jan _2 15:04:05.000000000")
	encoderConfig.StacktraceKey = ""
	config.EncoderConfig = encoderConfig

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	zapLog = built.With(zap.String("run_id", uuid.New().String()))
	return nil
}

// L returns the underlying *zap.Logger, for call sites that need a child
// logger (e.g. tagged with a run id).
func L() *zap.Logger {
	return zapLog
}

func Info(message string, fields ...zap.Field) {
	zapLog.Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	zapLog.Warn(message, fields...)
}

func Debug(message string, fields ...zap.Field) {
	zapLog.Debug(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	zapLog.Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	zapLog.Fatal(message, fields...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	if zapLog == nil {
		return nil
	}
	return zapLog.Sync()
}

// StageTimer logs a start line and returns a func to log the matching
// completion line with duration and row count.
func StageTimer(stage string) func(rows int) {
	Info("stage start", zap.String("stage", stage))
	start := time.Now()
	return func(rows int) {
		Info("stage done",
			zap.String("stage", stage),
			zap.Int("rows", rows),
			zap.String("rows_human", humanize.Comma(int64(rows))),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
