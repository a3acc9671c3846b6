// Package log holds the zap logger shared by dapi packages.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// names of sub-loggers
const (
	Auth    = "auth"
	Tapis   = "tapis"
	Apps    = "apps"
	Jobs    = "jobs"
	Files   = "files"
	Systems = "systems"
	DB      = "db"
	CLI     = "cli"
)

var (
	mu     sync.RWMutex
	once   sync.Once
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// Logger returns the process-wide logger, building it at the first call.
func Logger() *zap.Logger {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger != nil {
			return
		}
		l, err := createConfig().Build()
		if err != nil {
			fmt.Printf("Logging disabled, logger init failed with error: %v\n", err)
			l = zap.NewNop()
		}
		logger = l
	})
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named returns a sub-logger. Call it where the logger is used,
// so that Use takes effect.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// Use replaces the process-wide logger.
func Use(l *zap.Logger) {
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetLevel changes the level of the default logger.
//
// It has no effect on loggers given to Use.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

func createConfig() *zap.Config {
	return &zap.Config{
		Level:       level,
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "time",
			NameKey:        "name",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
