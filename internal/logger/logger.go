package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init switches the process logger to JSON on stdout at the given level.
// Unknown levels fall back to info.
func Init(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	log.WithField("level_name", lvl.String()).Info("logger initialized")
}

// Logger exposes the underlying logrus instance for libraries that
// want an io.Writer or a *logrus.Logger.
func Logger() *logrus.Logger {
	return log
}

func Debug(msg string, fields map[string]any) {
	log.WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]any) {
	log.WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]any) {
	log.WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]any) {
	log.WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]any) {
	log.WithFields(fields).Fatal(msg)
}
