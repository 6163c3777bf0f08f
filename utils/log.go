// Copyright 2026, the Tokentile contributors.

package utils

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger writing to name.log inside logDir.  The
// returned closer owns the log file.
func NewLogger(logDir, name string) (*logrus.Logger, io.Closer, error) {
	logname := path.Join(logDir, name+".log")
	fid, err := os.Create(logname)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating log %s", logname)
	}

	logger := logrus.New()
	logger.SetOutput(fid)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return logger, fid, nil
}
