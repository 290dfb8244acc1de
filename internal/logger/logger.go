// Package logger provides a rotating file logger shared across the run,
// adapted from the teacher CLI's singleton logger.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogDirEnv overrides the default log directory.
const LogDirEnv = "WHATSAPP_SCRAPER_LOG_DIR"

const (
	logDirName  = ".whatsapp-scraper/logs"
	logFileName = "run.log"
	maxSizeMB   = 5
	maxAgeDays  = 14
	maxBackups  = 10
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type Logger struct {
	rotator    *lumberjack.Logger
	std        *log.Logger
	level      Level
	mu         sync.Mutex
	alsoStderr bool
	warnCounts map[string]int
}

var (
	instance *Logger
	once     sync.Once
)

// Init creates the log directory and rotating log file. Safe to call more
// than once; only the first call takes effect.
func Init() error {
	var err error
	once.Do(func() {
		logDir := os.Getenv(LogDirEnv)
		if logDir == "" {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				err = fmt.Errorf("resolve home directory: %w", homeErr)
				return
			}
			logDir = filepath.Join(home, logDirName)
		}
		if mkErr := os.MkdirAll(logDir, 0o755); mkErr != nil {
			err = fmt.Errorf("create log directory: %w", mkErr)
			return
		}

		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxAge:     maxAgeDays,
			MaxBackups: maxBackups,
			Compress:   true,
			LocalTime:  true,
		}
		instance = &Logger{
			rotator: rotator,
			std:     log.New(rotator, "", 0),
			level:   INFO,
		}
	})
	return err
}

// Get returns the process logger, calling Init if no logger exists yet and
// falling back to stderr-only if Init failed.
func Get() *Logger {
	if instance == nil {
		if err := Init(); err != nil || instance == nil {
			instance = &Logger{std: log.New(os.Stderr, "", 0), level: INFO, alsoStderr: true}
		}
	}
	return instance
}

func Close() error {
	if instance != nil && instance.rotator != nil {
		return instance.rotator.Close()
	}
	return nil
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetAlsoStderr mirrors every log line to stderr, wired to --verbose.
func (l *Logger) SetAlsoStderr(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alsoStderr = enabled
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", level, fmt.Sprintf(format, args...))
	if l.std != nil {
		l.std.Print(line)
	}
	if l.alsoStderr {
		fmt.Fprint(os.Stderr, line)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

func (l *Logger) logAndPrint(level Level, format string, args ...interface{}) {
	l.log(level, format, args...)
	fmt.Fprintln(os.Stderr, fmt.Sprintf(format, args...))
}

// InfoPrint logs at INFO and also prints the message to stderr, for
// run-summary lines the user should see without tailing the log file.
func (l *Logger) InfoPrint(format string, args ...interface{}) { l.logAndPrint(INFO, format, args...) }

// WarnPrint logs at WARN and also prints the message to stderr.
func (l *Logger) WarnPrint(format string, args ...interface{}) { l.logAndPrint(WARN, format, args...) }

// ErrorPrint logs at ERROR and also prints the message to stderr.
func (l *Logger) ErrorPrint(format string, args ...interface{}) {
	l.logAndPrint(ERROR, format, args...)
}

// WarnOnce logs a warning the first time a given key is seen this run and
// folds every later occurrence into a running count instead of printing a
// repeat line per occurrence, the same way the teacher's
// reportSkippedPaths collects skipped paths and reports one summary line.
func (l *Logger) WarnOnce(key, format string, args ...interface{}) {
	l.mu.Lock()
	if l.warnCounts == nil {
		l.warnCounts = make(map[string]int)
	}
	l.warnCounts[key]++
	first := l.warnCounts[key] == 1
	l.mu.Unlock()
	if first {
		l.log(WARN, format, args...)
	}
}

// FlushWarnCounts prints one summary line for every WarnOnce key seen more
// than once this run, then resets the counters.
func (l *Logger) FlushWarnCounts() {
	l.mu.Lock()
	counts := l.warnCounts
	l.warnCounts = nil
	l.mu.Unlock()
	for key, n := range counts {
		if n > 1 {
			l.log(WARN, "%s: %d occurrence(s) this run", key, n)
		}
	}
}
