package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"lsasearch/internal/config"
)

// New - JSON logs everywhere except local, where a human reads them.
func New(env string, level string) *logrus.Logger {
	return NewWithOutput(env, level, os.Stdout)
}

func NewWithOutput(env string, level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if env == config.EnvLocal {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "time",
				logrus.FieldKeyMsg:  "msg",
			},
		})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}

// Discard - For tests and anything else that must stay quiet
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
