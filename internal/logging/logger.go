// Package logging provides the CLI-facing leveled, rotating logger used for
// one run's top-level progress messages. Per-file, per-call structured
// fields (model, chunk index, retry count) go through the docgen package's
// own logrus logger instead; this package is for the run as a whole.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// Config holds logger configuration.
type Config struct {
	Level      LogLevel
	OutputFile string // empty = stdout only
	MaxSize    int64  // bytes before rotation
	MaxBackups int
	JSONFormat bool
	AddSource  bool
}

// Logger wraps slog.Logger with file rotation.
type Logger struct {
	slog      *slog.Logger
	config    Config
	file      *os.File
	mu        sync.Mutex
	debugMode bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Initialize creates and configures the global logger. Must be called
// before any of the package-level convenience functions.
func Initialize(config Config) error {
	var initErr error
	once.Do(func() {
		logger, err := NewLogger(config)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize logger: %w", err)
			return
		}
		globalLogger = logger
	})
	return initErr
}

// NewLogger creates a standalone logger instance.
func NewLogger(config Config) (*Logger, error) {
	if config.MaxSize == 0 {
		config.MaxSize = 10 * 1024 * 1024
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 3
	}

	logger := &Logger{
		config:    config,
		debugMode: config.Level == DEBUG,
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if config.OutputFile != "" {
		dir := filepath.Dir(config.OutputFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}

		if err := logger.rotateIfNeeded(); err != nil {
			return nil, fmt.Errorf("failed to rotate logs: %w", err)
		}

		file, err := os.OpenFile(config.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.OutputFile, err)
		}
		logger.file = file
		writers = append(writers, file)
	}

	multiWriter := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{
		Level:     logger.toSlogLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.JSONFormat {
		handler = slog.NewJSONHandler(multiWriter, opts)
	} else {
		handler = slog.NewTextHandler(multiWriter, opts)
	}

	logger.slog = slog.New(handler)
	return logger, nil
}

func (l *Logger) rotateIfNeeded() error {
	if l.config.OutputFile == "" {
		return nil
	}

	info, err := os.Stat(l.config.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if info.Size() < l.config.MaxSize {
		return nil
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i)
		newPath := fmt.Sprintf("%s.%d", l.config.OutputFile, i+1)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, newPath)
		}
	}

	backupPath := fmt.Sprintf("%s.1", l.config.OutputFile)
	if err := os.Rename(l.config.OutputFile, backupPath); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return nil
}

func (l *Logger) toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case INFO:
		return slog.LevelInfo
	case WARN:
		return slog.LevelWarn
	case ERROR, FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

func (l *Logger) Fatal(msg string, args ...any) {
	l.slog.Error(msg, args...)
	l.Close()
	os.Exit(1)
}

// With returns a new logger with additional structured context attached.
func (l *Logger) With(args ...any) *Logger {
	newLogger := *l
	newLogger.slog = l.slog.With(args...)
	return &newLogger
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func Debug(msg string, args ...any) { dispatch(DEBUG, msg, args...) }
func Info(msg string, args ...any)  { dispatch(INFO, msg, args...) }
func Warn(msg string, args ...any)  { dispatch(WARN, msg, args...) }
func Error(msg string, args ...any) { dispatch(ERROR, msg, args...) }

func Fatal(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.Fatal(msg, args...)
		return
	}
	slog.Error(msg, args...)
	os.Exit(1)
}

func dispatch(level LogLevel, msg string, args ...any) {
	if globalLogger == nil {
		slog.Info(msg, args...)
		return
	}
	switch level {
	case DEBUG:
		globalLogger.Debug(msg, args...)
	case WARN:
		globalLogger.Warn(msg, args...)
	case ERROR:
		globalLogger.Error(msg, args...)
	default:
		globalLogger.Info(msg, args...)
	}
}

// With returns a derived logger from the global logger, or nil if the
// global logger was never initialized.
func With(args ...any) *Logger {
	if globalLogger != nil {
		return globalLogger.With(args...)
	}
	return nil
}

// Close closes the global logger's file handle, if any.
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

// IsDebugEnabled reports whether the global logger is at debug level.
func IsDebugEnabled() bool {
	if globalLogger != nil {
		return globalLogger.debugMode
	}
	return false
}

// DefaultConfig returns a sensible configuration rooted at logDir.
func DefaultConfig(debugMode bool, logDir string) Config {
	level := INFO
	if debugMode {
		level = DEBUG
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("docgen_%s.log", timestamp))

	return Config{
		Level:      level,
		OutputFile: logFile,
		MaxSize:    10 * 1024 * 1024,
		MaxBackups: 3,
		JSONFormat: !debugMode,
		AddSource:  debugMode,
	}
}
