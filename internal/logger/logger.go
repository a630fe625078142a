package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// New builds the process logger. Unknown levels fall back to info.
func New(level string, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

func NewWithOutput(output io.Writer, level string, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(output)

	parsedLevel, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsedLevel = logrus.InfoLevel
	}
	log.SetLevel(parsedLevel)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	return log
}

// Gorm routes ORM warnings and slow queries through the process logger.
func Gorm(log logrus.FieldLogger) gormlogger.Interface {
	return gormlogger.New(
		gormWriter{log: log.WithField("component", "gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

type gormWriter struct {
	log logrus.FieldLogger
}

func (writer gormWriter) Printf(format string, args ...interface{}) {
	writer.log.Warnf(strings.TrimSpace(format), args...)
}
