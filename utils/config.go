// Copyright 2026, the Tokentile contributors.

// Package utils holds the run-level plumbing shared by the driver and
// the command line tool: configuration, logging, run directories and
// resource reporting.
package utils

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type Config struct {

	// Smallest match length reported.  Zero means: use the
	// front-end's default.
	MinimumTokenMatch int

	// Slack below MinimumTokenMatch during the inner search.
	// Matches in [MTM-MergeBuffer, MTM) become merge bridges.
	MergeBuffer int

	// Maximum number of bridges per merged chain.  Zero means
	// unlimited.
	MergeLength int

	// One of AVG, MIN, MAX, SYMMETRIC, INTERSECTION, LONGEST_MATCH,
	// OVERALL.
	SimilarityMetric string

	// Comparisons scoring below this value are dropped.  Clamped to
	// [0, 1].
	SimilarityThreshold float64

	// Cap on the number of reported comparisons, keeping the top
	// scores.  Zero means all.
	MaximumNumberOfComparisons int

	// Normalize token streams before comparing, when the front-end
	// supports it.
	Normalize bool

	// Name of the submission holding shared base code.  Matches
	// against it are subtracted before regular comparisons.
	BaseCodeName string

	// Number of concurrent pair comparisons.  Zero picks a default
	// of several times the core count.
	Workers int

	// Size in bits of the per-submission window sketches used to
	// skip unrelated pairs.  Zero disables screening.
	BloomSize uint

	// Number of hash functions per sketch.
	NumHash uint

	// Windows with fewer distinct adjacent token-value pairs than
	// this are counted and reported as low-diversity.
	MinWindowDiversity int

	// The directory where results are written.
	ResultsDir string

	// The directory where log files are written.  Each run logs
	// into a generated subdirectory.
	LogDir string

	// Use this location to place temporary files.
	TempDir string

	// If true, temporary files are not removed upon completion.
	NoCleanTemp bool

	// Capture CPU profile data.
	CPUProfile bool
}

// ReadConfig loads a configuration file.  Files ending in .toml are
// parsed as TOML, everything else as JSON.
func ReadConfig(filename string) (*Config, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", filename)
	}

	config := new(Config)
	if strings.HasSuffix(filename, ".toml") {
		if _, err := toml.Decode(string(raw), config); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", filename)
		}
		return config, nil
	}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", filename)
	}
	return config, nil
}

// Check applies defaults and clamps.  defaultMTM is the front-end's
// minimum token match, used when the config does not set one.
func (c *Config) Check(defaultMTM int) error {

	if c.MinimumTokenMatch == 0 {
		c.MinimumTokenMatch = defaultMTM
	}
	if c.MinimumTokenMatch < 1 {
		return errors.Errorf("MinimumTokenMatch must be >= 1, got %d", c.MinimumTokenMatch)
	}
	if c.MergeBuffer < 0 {
		return errors.Errorf("MergeBuffer must be >= 0, got %d", c.MergeBuffer)
	}
	if c.MergeLength < 0 {
		return errors.Errorf("MergeLength must be >= 0, got %d", c.MergeLength)
	}
	if c.MaximumNumberOfComparisons < 0 {
		c.MaximumNumberOfComparisons = 0
	}

	if c.SimilarityMetric == "" {
		c.SimilarityMetric = "AVG"
	}
	if c.SimilarityThreshold < 0 {
		c.SimilarityThreshold = 0
	}
	if c.SimilarityThreshold > 1 {
		c.SimilarityThreshold = 1
	}

	if c.Workers == 0 {
		// Around 5x the core count works well; comparisons are
		// CPU bound but uneven in size.
		c.Workers = 5 * runtime.NumCPU()
	}
	if c.Workers < 1 {
		return errors.Errorf("Workers must be >= 1, got %d", c.Workers)
	}

	if c.BloomSize > 0 && c.NumHash == 0 {
		c.NumHash = 4
	}

	if c.ResultsDir == "" {
		c.ResultsDir = "results"
	}
	if c.LogDir == "" {
		c.LogDir = "tokentile_logs"
	}

	return nil
}

// Save writes the effective configuration as JSON, for the run log.
func (c *Config) Save(filename string) error {
	fid, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "saving config %s", filename)
	}
	defer fid.Close()
	enc := json.NewEncoder(fid)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return errors.Wrapf(err, "saving config %s", filename)
	}
	return nil
}
