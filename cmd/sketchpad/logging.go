// ABOUTME: Builds the process logger from config: level and text or JSON formatting.
// ABOUTME: Unknown levels or formats are reported as errors instead of falling back.
package main

import (
	"fmt"
	"io"

	"github.com/2389-research/sketchpad/config"
	"github.com/sirupsen/logrus"
)

// newLogger returns a logrus logger writing to out at the configured level and format.
func newLogger(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	switch cfg.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return logger, nil
}
