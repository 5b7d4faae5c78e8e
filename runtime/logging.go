package runtime

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnv selects client logging. Unset or unknown values disable it.
const LogLevelEnv = "QISKIT_IBM_RUNTIME_LOG_LEVEL"

var envLevels = map[string]zapcore.Level{
	"ERROR":   zapcore.ErrorLevel,
	"WARNING": zapcore.WarnLevel,
	"INFO":    zapcore.InfoLevel,
	"DEBUG":   zapcore.DebugLevel,
}

// LevelFromEnv parses a QISKIT_IBM_RUNTIME_LOG_LEVEL value.
func LevelFromEnv(value string) (zapcore.Level, bool) {
	level, ok := envLevels[strings.ToUpper(strings.TrimSpace(value))]
	return level, ok
}

// NewLoggerFromEnv builds a stderr logger at the level named by
// QISKIT_IBM_RUNTIME_LOG_LEVEL, or a no-op logger.
func NewLoggerFromEnv() *zap.Logger {
	level, ok := LevelFromEnv(os.Getenv(LogLevelEnv))
	if !ok {
		return zap.NewNop()
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.DisableStacktrace = true
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
