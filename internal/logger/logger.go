package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process wide logger. It is a no-op logger until Init is called
// so packages can log from tests without setup.
var Log = zap.NewNop()

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Init builds the default development logger.
func Init() {
	if err := InitWith(true); err != nil {
		fmt.Println("logger init failed:", err)
	}
}

// InitWith builds either a development (console, colored) or a production
// (JSON) logger sharing the package level.
func InitWith(development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// SetLevel changes the level of the current logger at runtime.
func SetLevel(name string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("unknown log level %q: %w", name, err)
	}
	level.SetLevel(lvl)
	return nil
}

// Sync flushes buffered entries, errors from syncing stdout are ignored.
func Sync() {
	_ = Log.Sync()
}
