package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logger from the log section. Unknown levels fall back to info.
func NewLogger(cfg LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// LogError logs err with the module and operation it happened in
func LogError(logger *logrus.Logger, module, operation string, data any, err error) {
	fields := logrus.Fields{
		"module":    module,
		"operation": operation,
	}
	if data != nil {
		fields["data"] = data
	}
	logger.WithFields(fields).Error(err.Error())
}
