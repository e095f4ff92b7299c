package main

import (
	"path/filepath"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/orandin/lumberjackrus"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// newLogger logs coloured text to stdout and, when a log file is set,
// JSON lines at info level and above to a rotating file.
func newLogger(opts *Options) *logrus.Logger {
	logger := logrus.New()
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	logger.SetOutput(colorable.NewColorableStdout())
	if opts.LogFile == "" {
		return logger
	}
	hook, err := lumberjackrus.NewHook(
		&lumberjackrus.LogFile{
			Filename:   opts.LogFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
		logrus.InfoLevel,
		&logrus.JSONFormatter{},
		&lumberjackrus.LogFileOpts{
			logrus.ErrorLevel: &lumberjackrus.LogFile{
				Filename:   errorLogFile(opts.LogFile),
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     30,
				Compress:   true,
			},
		},
	)
	if err != nil {
		panic(err)
	}
	logger.AddHook(hook)
	return logger
}

// errorLogFile derives the error log name, fabric-migrate.log becoming
// fabric-migrate.error.log.
func errorLogFile(fn string) string {
	ext := filepath.Ext(fn)
	return strings.TrimSuffix(fn, ext) + ".error" + ext
}
