package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nijaru/yt-sum/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "ytsum.log"

// New builds a logger from cfg. When cfg.Dir is set, entries also go to a
// rotated file in that directory.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		level = parsed
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
		logFile := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, logFileName),
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, logFile)
	}
	logger.SetOutput(out)

	return logger, nil
}
