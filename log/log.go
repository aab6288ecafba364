// Package log writes diagnostics to a daily file under the logs directory.
// Until Setup enables it, every call is discarded.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	layout    = "2006-01-02"
	retention = 7 * 24 * time.Hour
)

var logger = &logrus.Logger{
	Out:       io.Discard,
	Formatter: &logrus.TextFormatter{},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// Setup applies the logs.* settings. With logs.write off it is a no-op.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		return nil
	}
	return setup(where.Logs(), time.Now())
}

func setup(dir string, now time.Time) error {
	path := filepath.Join(dir, now.Format(layout)+".log")
	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logger.SetOutput(f)
	if viper.GetBool(key.LogsJson) {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	prune(dir, now)
	return nil
}

// prune removes daily files older than the retention window.
func prune(dir string, now time.Time) {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		day, ok := strings.CutSuffix(entry.Name(), ".log")
		if !ok || entry.IsDir() {
			continue
		}

		t, err := time.ParseInLocation(layout, day, now.Location())
		if err != nil || now.Sub(t) <= retention {
			continue
		}
		if err := filesystem.API().Remove(filepath.Join(dir, entry.Name())); err != nil {
			logger.Warnf("prune %s: %s", entry.Name(), err)
		}
	}
}

func Error(args ...any) { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Warn(args ...any) { logger.Warn(args...) }
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }
func Info(args ...any) { logger.Info(args...) }
func Infof(format string, args ...any) { logger.Infof(format, args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
