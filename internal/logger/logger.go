package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New инициализирует логгер сервиса. В продакшн окружении (GIN_MODE=release) пишет JSON, иначе текст.
// Уровень берется из level, пустое или нераспознанное значение означает info для продакшн и debug для
// остальных окружений.
func New(output io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)

	release := os.Getenv("GIN_MODE") == "release"
	if release {
		l.SetFormatter(new(logrus.JSONFormatter))
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}

	if level == "" {
		return l
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		l.WithField("level", level).Warn("unknown log level, keeping default")
		return l
	}
	l.SetLevel(parsed)
	return l
}
