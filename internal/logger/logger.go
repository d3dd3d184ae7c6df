package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.Info("logger initialized")
}

// SetLevel applies the configured level name. Unknown names fall back
// to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

func Debug(msg string, fields map[string]any) {
	log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func Info(msg string, fields map[string]any) {
	log.WithFields(logrus.Fields(fields)).Info(msg)
}

func Warn(msg string, fields map[string]any) {
	log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func Error(msg string, fields map[string]any) {
	log.WithFields(logrus.Fields(fields)).Error(msg)
}

func Fatal(msg string, fields map[string]any) {
	log.WithFields(logrus.Fields(fields)).Fatal(msg)
}
