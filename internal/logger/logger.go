package logger

import (
	"os"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *log.Logger {
	l := log.New()
	l.Out = os.Stdout
	l.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	l.SetLevel(log.InfoLevel)
	return l
}

// Setup applies the configured level and output format. Unknown levels fall back to info.
func Setup(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		logger.Formatter = &log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	} else {
		logger.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}
}

// GetLogger returns an entry annotated with the calling function.
func GetLogger() *log.Entry {
	pc, _, line, ok := runtime.Caller(1)
	if !ok {
		return log.NewEntry(logger)
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return logger.WithFields(log.Fields{
		"function": name,
		"line":     line,
	})
}
