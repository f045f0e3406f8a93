package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *zap.Logger

	// level 可在运行时调整, 例如 CLI 的 --verbose
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	// 默认 Nop Logger, 库代码在未 Init 时调用不会 panic
	Log = zap.NewNop()
}

// Init 按环境初始化全局 logger; lvl 为空时 production 用 info, 其余用 debug
func Init(env string, lvl string) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		level.SetLevel(zap.InfoLevel)
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		level.SetLevel(zap.DebugLevel)
	}
	if lvl != "" {
		_ = SetLevel(lvl)
	}
	config.Level = level

	var err error
	Log, err = config.Build(zap.AddCallerSkip(1)) // 跳过包装函数, 调用位置指向业务代码
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Log)
}

// SetLevel 解析 "debug" / "info" / "warn" / "error" 并立即生效
func SetLevel(lvl string) error {
	l, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return err
	}
	level.SetLevel(l)
	return nil
}

// Named 返回带组件名的子 logger, 不跳过调用栈
func Named(name string) *zap.Logger {
	return Log.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}
