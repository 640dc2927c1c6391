// Package logger provides structured logging for the folder view pane.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/redsalamander/folderview/config"
)

// tailCapacity bounds the in-process log tail kept for the host's
// diagnostics view.
const tailCapacity = 512

// Logger is the pane's structured logger.
type Logger struct {
	*logrus.Logger
	logFile     *lumberjack.Logger
	config      *config.LoggingConfig
	hook        *BufferedHook
	initialized bool
}

var (
	instance *Logger
	once     sync.Once
)

// Get returns the singleton logger instance.
func Get() *Logger {
	once.Do(func() {
		instance = &Logger{
			Logger: logrus.New(),
		}
	})
	return instance
}

// Init initializes the logger with the provided configuration.
func (l *Logger) Init(cfg *config.LoggingConfig, configDir string) error {
	l.config = cfg

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})

	if l.hook == nil {
		l.hook = NewBufferedHook(tailCapacity)
		l.AddHook(l.hook)
	}

	if cfg.ToFile {
		logPath := cfg.FilePath
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(configDir, logPath)
		}

		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		maxSize := 10
		if cfg.MaxFileSize != "" {
			fmt.Sscanf(cfg.MaxFileSize, "%dMB", &maxSize)
		}

		l.logFile = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}

		l.SetOutput(io.MultiWriter(os.Stdout, l.logFile))
	} else {
		l.SetOutput(os.Stdout)
	}

	l.initialized = true
	l.Info("Logger initialized")
	return nil
}

// Tail returns the most recent buffered log entries in chronological
// order, or nil before Init.
func (l *Logger) Tail() []LogEntry {
	if l.hook == nil {
		return nil
	}
	return l.hook.GetBuffer().GetAll()
}

// ExportLogs writes the buffered tail to a plain-text file.
func (l *Logger) ExportLogs(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, entry := range l.Tail() {
		_, err := fmt.Fprintf(file, "[%s] %s: %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Message)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close closes the logger and associated resources.
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
	l.Info("Logger closed")
}

// LogEntry represents a log entry for the UI buffer.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// LogBuffer is a circular buffer for storing recent log entries, surfaced
// to a pane host's diagnostics view.
type LogBuffer struct {
	entries  []LogEntry
	capacity int
	head     int
	count    int
	mu       sync.RWMutex
}

// NewLogBuffer creates a new log buffer with the specified capacity.
func NewLogBuffer(capacity int) *LogBuffer {
	return &LogBuffer{
		entries:  make([]LogEntry, capacity),
		capacity: capacity,
	}
}

// Add adds a new log entry to the buffer.
func (b *LogBuffer) Add(level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// GetAll returns all log entries in chronological order.
func (b *LogBuffer) GetAll() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}

	result := make([]LogEntry, b.count)
	start := (b.head - b.count + b.capacity) % b.capacity

	for i := 0; i < b.count; i++ {
		idx := (start + i) % b.capacity
		result[i] = b.entries[idx]
	}

	return result
}

// GetFiltered returns log entries filtered by level.
func (b *LogBuffer) GetFiltered(levels ...string) []LogEntry {
	all := b.GetAll()
	if len(levels) == 0 {
		return all
	}

	levelSet := make(map[string]bool)
	for _, l := range levels {
		levelSet[l] = true
	}

	var filtered []LogEntry
	for _, entry := range all {
		if levelSet[entry.Level] {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// Clear removes all entries from the buffer.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.head = 0
	b.count = 0
}

// BufferedHook is a logrus hook that writes entries to a LogBuffer.
type BufferedHook struct {
	buffer *LogBuffer
}

// NewBufferedHook creates a new BufferedHook.
func NewBufferedHook(capacity int) *BufferedHook {
	return &BufferedHook{
		buffer: NewLogBuffer(capacity),
	}
}

// Levels returns the log levels this hook should be called for.
func (h *BufferedHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire is called when a log entry is made.
func (h *BufferedHook) Fire(entry *logrus.Entry) error {
	h.buffer.Add(entry.Level.String(), entry.Message)
	return nil
}

// GetBuffer returns the underlying log buffer.
func (h *BufferedHook) GetBuffer() *LogBuffer {
	return h.buffer
}

// WithFields is a convenience wrapper for logrus.WithFields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// Enumeration logs a directory-enumeration-related message.
func (l *Logger) Enumeration(format string, args ...interface{}) {
	l.WithField("component", "enumeration").Infof(format, args...)
}

// IconLoad logs an icon-loading-related message.
func (l *Logger) IconLoad(format string, args ...interface{}) {
	l.WithField("component", "iconload").Infof(format, args...)
}

// Layout logs a layout-engine-related message.
func (l *Logger) Layout(format string, args ...interface{}) {
	l.WithField("component", "layout").Infof(format, args...)
}

// Render logs a renderer-related message.
func (l *Logger) Render(format string, args ...interface{}) {
	l.WithField("component", "render").Infof(format, args...)
}

// Overlay logs an overlay-controller-related message.
func (l *Logger) Overlay(format string, args ...interface{}) {
	l.WithFields(logrus.Fields{"component": "overlay"}).Warnf(format, args...)
}
