// Package logging builds the process logger: one rotating JSON file per
// level plus a colored console stream.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/soaringjerry/SheHuMaan/internal/config"
)

// New returns the logger and the level that gates it. The level can be
// changed at runtime with SetLevel.
func New(cfg config.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if err := SetLevel(level, cfg.Level); err != nil {
		return nil, level, err
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, level, fmt.Errorf("could not create log directory: %w", err)
	}

	cores := make([]zapcore.Core, 0, 5)
	for _, l := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		cores = append(cores, newFileCore(cfg, l, level, encoderConfig))
	}
	cores = append(cores, newConsoleCore(level))

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), level, nil
}

// SetLevel parses name ("debug", "info", ...) into level.
func SetLevel(level zap.AtomicLevel, name string) error {
	if name == "" {
		name = "info"
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", name, err)
	}
	return nil
}

// Nop is a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }

// newFileCore writes exactly one level to <dir>/<date>-<level>.log.
func newFileCore(cfg config.LoggingConfig, only zapcore.Level, gate zap.AtomicLevel, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	fileName := filepath.Join(cfg.Directory, fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), only.String()))
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == only && gate.Enabled(l)
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, enabler)
}

func newConsoleCore(gate zap.AtomicLevel) zapcore.Core {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		gate,
	)
}
