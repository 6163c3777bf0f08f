// Copyright 2026, the Tokentile contributors.

package utils

import (
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MakeRunDirs creates the per-run results, log and temp directories,
// each a uuid-named subdirectory of the configured locations, and
// rewrites the config paths to point at them.  The run id is returned.
func MakeRunDirs(config *Config) (string, error) {

	xuid, err := uuid.NewUUID()
	if err != nil {
		return "", errors.Wrap(err, "generating run id")
	}
	uid := xuid.String()

	config.ResultsDir = path.Join(config.ResultsDir, uid)
	config.LogDir = path.Join(config.LogDir, uid)
	if config.TempDir == "" {
		config.TempDir = path.Join("tokentile_tmp", uid)
	} else {
		config.TempDir = path.Join(config.TempDir, uid)
	}

	for _, dir := range []string{config.ResultsDir, config.LogDir, config.TempDir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", errors.Wrapf(err, "creating run directory %s", dir)
		}
	}
	return uid, nil
}

// CleanTemp removes the run's temporary directory unless the config
// asks to keep it.
func CleanTemp(config *Config) error {
	if config.NoCleanTemp {
		return nil
	}
	return os.RemoveAll(config.TempDir)
}
