package cmd

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapEnvLevel overrides the bootstrap log level, e.g. SITE_TEXT_LOG_LEVEL=debug
const bootstrapEnvLevel = "SITE_TEXT_LOG_LEVEL"

// bootstrapLogger 主日志器就绪前使用的控制台日志器
var bootstrapLogger = newBootstrapLogger()

func newBootstrapLogger() *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if fi, err := os.Stderr.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), bootstrapLevel())
	return zap.New(core, zap.AddCaller()).Named("bootstrap")
}

// bootstrapLevel 读取 SITE_TEXT_LOG_LEVEL，兼容旧的 DEBUG 开关
func bootstrapLevel() zapcore.Level {
	if v := strings.TrimSpace(os.Getenv(bootstrapEnvLevel)); v != "" {
		if lvl, err := zapcore.ParseLevel(v); err == nil {
			return lvl
		}
	}
	if os.Getenv("DEBUG") != "" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
