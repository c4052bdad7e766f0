package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/neurozen/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Level overrides the level derived from Debug ("debug", "info", "warn", "error").
	Level string
	// Stderr mirrors log output to stderr even outside debug mode (used by `serve`).
	Stderr bool
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = parsed
	}

	var writer io.Writer = fileWriter
	if cfg.Debug || cfg.Stderr {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
