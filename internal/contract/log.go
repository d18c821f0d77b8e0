package contract

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerMu sync.RWMutex
	logger   = zap.NewNop()
)

// L returns the process logger. It discards everything until InitLogger is called.
func L() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the process logger and returns the previous one.
func SetLogger(l *zap.Logger) *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	prev := logger
	logger = l
	return prev
}

// InitLogger configures the process logger. Entries at or above level go to
// logFile as JSON lines; warnings and errors are also echoed to stderr.
// An empty logFile keeps only the stderr sink.
func InitLogger(logFile string, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder

	isWarnLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.WarnLevel && l >= lvl
	})
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.Lock(os.Stderr), isWarnLevel),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %q: %w", logFile, err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(config), zapcore.AddSync(f), lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	SetLogger(l)
	return l, nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	L().Error(msg, zap.Error(err))
	_ = L().Sync()
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning through the process logger, or to stderr when no logger is configured.
func LogWarn(msg string, err error) {
	l := L()
	if l.Core().Enabled(zapcore.WarnLevel) {
		l.Warn(msg, zap.Error(err))
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}
