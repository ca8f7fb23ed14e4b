package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// LogsManager writes JSON log lines to a file in the app log directory. Its
// method set matches setto.Logger so the CLI can hand it to the client.
type LogsManager struct {
	cm     *ConfigManager
	path   string
	logger *log.Logger
	File   *os.File // allow other packages to use same log output
	mutex  sync.RWMutex
}

func NewLogsManager(cm *ConfigManager) (*LogsManager, error) {
	paths := GetAppPaths("")
	logFileName := cm.GetConfigWithDefault("logfile", "setto.log")

	lm := &LogsManager{
		cm:     cm,
		path:   ResolvePath(paths.LogDir, filepath.FromSlash(logFileName)),
		logger: log.New(),
	}

	if err := lm.initLogger(); err != nil {
		return nil, err
	}

	return lm, nil
}

func (lm *LogsManager) initLogger() error {
	file, err := os.OpenFile(lm.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", lm.path, err)
	}

	lm.File = file

	logLevel := lm.cm.GetConfigWithDefault("log_level", "info")
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", logLevel)
		level = log.InfoLevel
	}
	lm.logger.SetLevel(level)
	lm.logger.SetOutput(file)
	lm.logger.SetFormatter(&log.JSONFormatter{})

	return nil
}

// Path returns the log file location
func (lm *LogsManager) Path() string {
	return lm.path
}

func (lm *LogsManager) fileInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file = "<???>"
		line = 1
	} else {
		slash := strings.LastIndex(file, "/")
		if slash >= 0 {
			file = file[slash+1:]
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}

func (lm *LogsManager) Log(level string, message string, category string) {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	// Closed during shutdown
	if lm.File == nil {
		return
	}

	entry := lm.logger.WithFields(log.Fields{
		"category": category,
		"file":     lm.fileInfo(3),
	})

	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	default:
		entry.Info(message)
	}
}

func (lm *LogsManager) Debug(message string, category string) {
	lm.Log("debug", message, category)
}

func (lm *LogsManager) Info(message string, category string) {
	lm.Log("info", message, category)
}

func (lm *LogsManager) Warn(message string, category string) {
	lm.Log("warn", message, category)
}

func (lm *LogsManager) Error(message string, category string) {
	lm.Log("error", message, category)
}

// Close closes the log file - call this when shutting down
func (lm *LogsManager) Close() error {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.File != nil {
		err := lm.File.Close()
		lm.File = nil
		return err
	}
	return nil
}

// SetLogLevel updates the log level at runtime
func (lm *LogsManager) SetLogLevel(levelStr string) error {
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %v", levelStr, err)
	}

	lm.mutex.Lock()
	defer lm.mutex.Unlock()
	lm.logger.SetLevel(level)

	return nil
}

// GetLogLevel returns the current log level
func (lm *LogsManager) GetLogLevel() string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()
	return lm.logger.GetLevel().String()
}
