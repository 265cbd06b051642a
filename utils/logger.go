package utils

import (
	"os"

	"github.com/sirupsen/logrus"

	"trend-seo/config"
)

// NewLogger creates the application logger. Output goes to stdout so the
// terminal report stays interleaved with progress messages in order.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	logger.SetLevel(config.LogLevel())
	return logger
}
