// Copyright 2026, the Tokentile contributors.

package utils

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAppliesDefaults(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Check(9))

	assert.Equal(t, 9, c.MinimumTokenMatch)
	assert.Equal(t, "AVG", c.SimilarityMetric)
	assert.Greater(t, c.Workers, 0)
	assert.Equal(t, "results", c.ResultsDir)
	assert.Equal(t, "tokentile_logs", c.LogDir)
}

func TestCheckClampsThreshold(t *testing.T) {
	c := &Config{SimilarityThreshold: 1.7}
	require.NoError(t, c.Check(5))
	assert.Equal(t, 1.0, c.SimilarityThreshold)

	c = &Config{SimilarityThreshold: -0.3}
	require.NoError(t, c.Check(5))
	assert.Equal(t, 0.0, c.SimilarityThreshold)
}

func TestCheckRejectsBadValues(t *testing.T) {
	assert.Error(t, (&Config{MinimumTokenMatch: -1}).Check(5))
	assert.Error(t, (&Config{MergeBuffer: -2}).Check(5))
	assert.Error(t, (&Config{Workers: -1}).Check(5))
}

func TestCheckDefaultsNumHashWithScreening(t *testing.T) {
	c := &Config{BloomSize: 1 << 20}
	require.NoError(t, c.Check(5))
	assert.Equal(t, uint(4), c.NumHash)

	c = &Config{}
	require.NoError(t, c.Check(5))
	assert.Equal(t, uint(0), c.NumHash)
}

func TestReadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	fname := path.Join(dir, "config.toml")
	data := `
MinimumTokenMatch = 12
SimilarityMetric = "MAX"
SimilarityThreshold = 0.4
Normalize = true
`
	require.NoError(t, os.WriteFile(fname, []byte(data), 0o644))

	c, err := ReadConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, 12, c.MinimumTokenMatch)
	assert.Equal(t, "MAX", c.SimilarityMetric)
	assert.Equal(t, 0.4, c.SimilarityThreshold)
	assert.True(t, c.Normalize)
}

func TestReadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	fname := path.Join(dir, "config.json")
	data := `{"MinimumTokenMatch": 7, "BaseCodeName": "template"}`
	require.NoError(t, os.WriteFile(fname, []byte(data), 0o644))

	c, err := ReadConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, 7, c.MinimumTokenMatch)
	assert.Equal(t, "template", c.BaseCodeName)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig("does/not/exist.toml")
	assert.Error(t, err)
}
