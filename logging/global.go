// Package logging sets up the structured slog logger of the formulary browser:
// text on the console, JSON in a weekly rotating file.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/giygas/formulary-browser/config"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with development defaults
func InitLogger(logDir string) {
	InitLoggerWithEnvironment(logDir, config.EnvDevelopment, "", 4, 100*1024*1024)
}

// InitLoggerWithEnvironment initializes the global logger. The console level
// follows the environment unless logLevel overrides it; the file always
// records debug.
func InitLoggerWithEnvironment(logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	verbose := env == config.EnvTest && testing.Testing() && testing.Verbose()
	initLogger(logDir, GetConsoleLogLevel(env, logLevel, verbose), retentionWeeks, maxFileSize)
}

func initLogger(logDir string, consoleLevel slog.Level, retentionWeeks int, maxFileSize int64) {
	Close()

	logger, rotating := setupLogger(logDir, consoleLevel, retentionWeeks, maxFileSize)
	DefaultLoggingService = &LoggingService{Logger: logger, rotating: rotating}
	slog.SetDefault(logger)
}

// ResetForTest replaces the global logger for the duration of a test
func ResetForTest(t testing.TB, logDir string, env config.Environment, logLevel string, retentionWeeks int, maxFileSize int64) {
	t.Helper()
	InitLoggerWithEnvironment(logDir, env, logLevel, retentionWeeks, maxFileSize)
	t.Cleanup(Close)
}

// Close flushes and closes the log file, if any
func Close() {
	if DefaultLoggingService != nil && DefaultLoggingService.rotating != nil {
		_ = DefaultLoggingService.rotating.Close()
		DefaultLoggingService.rotating = nil
	}
}

// setupLogger builds the console + rotating file logger. It falls back to
// console only when the log directory is unusable.
func setupLogger(logDir string, consoleLevel slog.Level, retentionWeeks int, maxFileSize int64) (*slog.Logger, *RotatingLogger) {
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: consoleLevel})

	if logDir == "" {
		return slog.New(console), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		logger := slog.New(console)
		logger.Error("Failed to create logs directory", "error", err)
		return logger, nil
	}

	rotating := NewRotatingLoggerWithSizeLimit(logDir, retentionWeeks, maxFileSize)

	rotating.mu.Lock()
	err := rotating.doRotate(getWeekKey(rotating.lastCleanup))
	rotating.mu.Unlock()
	if err != nil {
		logger := slog.New(console)
		logger.Error("Failed to initialize rotating logger", "error", err)
		return logger, nil
	}
	rotating.startCleanup()

	file := slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: GetFileLogLevel()})

	return slog.New(&multiHandler{handlers: []slog.Handler{console, file}}), rotating
}

// parseLogLevel maps a LOG_LEVEL value, defaulting to info
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel returns the console level for an environment.
// Tests stay quiet unless run verbose, whatever LOG_LEVEL says.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the level of the JSON log file
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return nil
	}
	return DefaultLoggingService.Logger
}

// Logger returns the configured logger, or a console logger at Info level
// before InitLogger ran.
func Logger() *slog.Logger {
	if l := logger(); l != nil {
		return l
	}
	return fallback(slog.LevelInfo)
}

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Info(msg, args...)
		return
	}
	fallback(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Error(msg, args...)
		return
	}
	fallback(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Warn(msg, args...)
		return
	}
	fallback(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if l := logger(); l != nil {
		l.Debug(msg, args...)
		return
	}
	fallback(slog.LevelDebug).Debug(msg, args...)
}
