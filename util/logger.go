package util

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects how the command-line tools log.
type LoggerConfig struct {
	Debug     bool   // log at debug level instead of warn
	LogFormat string // "json" or "human"
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Debug:     false,
		LogFormat: "human",
	}
}

// NewLogger builds a zap logger writing to stderr. Unless Debug is set only
// warnings and errors are emitted, so a run that succeeds stays silent.
func NewLogger(config LoggerConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if config.LogFormat == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapConfig.OutputPaths = []string{"stderr"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if config.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	l, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}
