package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboat's logger.ILogger)
// --------------------------------------------------------------------------

// rbLogger writes "LEVEL | package | message" lines
type rbLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *rbLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *rbLogger) Debugf(format string, args ...interface{}) {
	l.logf(logger.DEBUG, "DEBUG", format, args...)
}

func (l *rbLogger) Infof(format string, args ...interface{}) {
	l.logf(logger.INFO, "INFO", format, args...)
}

func (l *rbLogger) Warningf(format string, args ...interface{}) {
	l.logf(logger.WARNING, "WARN", format, args...)
}

func (l *rbLogger) Errorf(format string, args ...interface{}) {
	l.logf(logger.ERROR, "ERROR", format, args...)
}

func (l *rbLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.logf(logger.CRITICAL, "PANIC", "%s", msg)
	panic(msg)
}

func (l *rbLogger) logf(level logger.LogLevel, levelStr string, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// logOutput is the destination of all loggers created by CreateLogger
var logOutput io.Writer = os.Stdout

// CreateLogger is a logger.Factory creating loggers at INFO level
func CreateLogger(pkgName string) logger.ILogger {
	return &rbLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: log.New(logOutput, "", log.Ldate|log.Ltime),
	}
}

// ParseLogLevel converts a level name (debug, info, warn, error) to a logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, errors.Newf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// dragonboatLoggers are the package loggers of dragonboat itself
var dragonboatLoggers = []string{"raft", "raftdb", "rsm", "transport", "dragonboat", "grpc", "util", "logdb"}

// rbKVLoggers are the package loggers of this module
var rbKVLoggers = []string{"store", "oak", "transport/rpc", "rpc"}

// InitLoggers installs the custom logger factory and sets the configured level on all loggers.
func InitLoggers(config ServerConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range dragonboatLoggers {
		logger.GetLogger(name).SetLevel(level)
	}
	for _, name := range rbKVLoggers {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}
