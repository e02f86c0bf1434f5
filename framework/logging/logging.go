// Package logging builds the application's logrus logger from config.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/moneyhub/di/framework/config"
)

// New returns a logger configured from cfg.Log. An unknown level falls back
// to info; an unknown format falls back to text. Every entry carries the
// app name and environment.
//
//	log := logging.New(cfg)
//	log.WithField("container", "root").Info("booted")
func New(cfg *config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New writing to out.
func NewWithOutput(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(cfg.Log.Level))
	logger.SetReportCaller(cfg.Log.Caller)

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.AddHook(&appHook{fields: logrus.Fields{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	}})
	return logger
}

// ParseLevel is logrus.ParseLevel with an info fallback.
func ParseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// appHook stamps static fields on every entry, without overwriting fields
// the caller set.
type appHook struct {
	fields logrus.Fields
}

func (h *appHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *appHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
