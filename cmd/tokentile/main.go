// Copyright 2026, the Tokentile contributors.

// Tokentile finds pairs of submissions sharing suspiciously long runs
// of identical structural tokens.  Each submission is a directory of
// token-stream files produced by a language front-end; tokentile
// normalizes the streams, tiles every pair with a greedy string tiling
// matcher, and writes the scored comparisons to a results directory.
//
// Tokentile can be invoked either using a configuration file in TOML
// or JSON format, or using command-line flags.  A typical invocation
// using flags is:
//
// tokentile --MinimumTokenMatch=9 --SimilarityMetric=AVG --SimilarityThreshold=0.5
//    --BaseCodeName=template submissions/*
//
// To use a configuration file, provide its path when invoking:
//
// tokentile --ConfigFileName=config.toml submissions/*
//
// Each run places its logs and results into uuid-named directories
// under the configured LogDir and ResultsDir.  The log files may
// contain useful information for troubleshooting.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/profile"

	"github.com/tokentile/tokentile/driver"
	"github.com/tokentile/tokentile/submission"
	"github.com/tokentile/tokentile/utils"
)

var config *utils.Config

func handleArgs() []string {

	ConfigFileName := flag.String("ConfigFileName", "", "TOML or JSON file containing configuration parameters")
	MinimumTokenMatch := flag.Int("MinimumTokenMatch", 0, "Smallest match length reported")
	MergeBuffer := flag.Int("MergeBuffer", 0, "Slack below MinimumTokenMatch for merge bridges")
	MergeLength := flag.Int("MergeLength", 0, "Maximum bridges per merged chain")
	SimilarityMetric := flag.String("SimilarityMetric", "", "AVG, MIN, MAX, SYMMETRIC, INTERSECTION, LONGEST_MATCH or OVERALL")
	SimilarityThreshold := flag.Float64("SimilarityThreshold", 0, "Drop comparisons scoring below this value")
	MaximumNumberOfComparisons := flag.Int("MaximumNumberOfComparisons", 0, "Report at most this many comparisons (0 = all)")
	Normalize := flag.Bool("Normalize", false, "Normalize token streams before comparing")
	BaseCodeName := flag.String("BaseCodeName", "", "Submission holding shared base code")
	Workers := flag.Int("Workers", 0, "Number of concurrent pair comparisons")
	BloomSize := flag.Uint("BloomSize", 0, "Size of pair-screening sketches, in bits (0 = off)")
	NumHash := flag.Uint("NumHash", 0, "Number of hashes per sketch")
	MinWindowDiversity := flag.Int("MinWindowDiversity", 0, "Report windows with fewer distinct token pairs")
	ResultsDir := flag.String("ResultsDir", "", "Directory for results")
	LogDir := flag.String("LogDir", "", "Directory for log files")
	TempDir := flag.String("TempDir", "", "Workspace for temporary files")
	NoCleanTemp := flag.Bool("NoCleanTemp", false, "Do not delete temporary files")
	CPUProfile := flag.Bool("CPUProfile", false, "Capture CPU profile data")

	flag.Parse()

	if *ConfigFileName != "" {
		var err error
		config, err = utils.ReadConfig(*ConfigFileName)
		if err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
			os.Exit(1)
		}
	} else {
		config = new(utils.Config)
	}

	if *MinimumTokenMatch != 0 {
		config.MinimumTokenMatch = *MinimumTokenMatch
	}
	if *MergeBuffer != 0 {
		config.MergeBuffer = *MergeBuffer
	}
	if *MergeLength != 0 {
		config.MergeLength = *MergeLength
	}
	if *SimilarityMetric != "" {
		config.SimilarityMetric = *SimilarityMetric
	}
	if *SimilarityThreshold != 0 {
		config.SimilarityThreshold = *SimilarityThreshold
	}
	if *MaximumNumberOfComparisons != 0 {
		config.MaximumNumberOfComparisons = *MaximumNumberOfComparisons
	}
	if *Normalize {
		config.Normalize = true
	}
	if *BaseCodeName != "" {
		config.BaseCodeName = *BaseCodeName
	}
	if *Workers != 0 {
		config.Workers = *Workers
	}
	if *BloomSize != 0 {
		config.BloomSize = *BloomSize
	}
	if *NumHash != 0 {
		config.NumHash = *NumHash
	}
	if *MinWindowDiversity != 0 {
		config.MinWindowDiversity = *MinWindowDiversity
	}
	if *ResultsDir != "" {
		config.ResultsDir = *ResultsDir
	}
	if *LogDir != "" {
		config.LogDir = *LogDir
	}
	if *TempDir != "" {
		config.TempDir = *TempDir
	}
	if *NoCleanTemp {
		config.NoCleanTemp = true
	}
	if *CPUProfile {
		config.CPUProfile = true
	}

	return flag.Args()
}

// loadSubmissions parses every submission directory.  Directories that
// fail to parse become invalid submissions; the driver excludes them
// with a warning rather than failing the run.
func loadSubmissions(dirs []string, lang submission.Language) []*submission.Submission {

	var subs []*submission.Submission
	for _, dir := range dirs {
		name := path.Base(path.Clean(dir))

		var files []string
		for _, suffix := range lang.Suffixes {
			fs, err := filepath.Glob(path.Join(dir, "*"+suffix))
			if err == nil {
				files = append(files, fs...)
			}
		}
		sort.Strings(files)

		if len(files) == 0 {
			subs = append(subs, submission.Invalid(name, lang,
				fmt.Errorf("no %s files in %s", strings.Join(lang.Suffixes, "/"), dir)))
			continue
		}

		tokens, err := lang.Parse(files, config.Normalize)
		if err != nil {
			subs = append(subs, submission.Invalid(name, lang, err))
			continue
		}
		s, err := submission.New(name, lang, tokens)
		if err != nil {
			subs = append(subs, submission.Invalid(name, lang, err))
			continue
		}
		subs = append(subs, s)
	}
	return subs
}

func main() {

	dirs := handleArgs()
	if len(dirs) == 0 {
		os.Stderr.WriteString("\nno submission directories provided, run 'tokentile --help' for more information.\n\n")
		os.Exit(1)
	}

	lang := tokStreamLanguage()
	if err := config.Check(lang.MinimumTokenMatch); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	runID, err := utils.MakeRunDirs(config)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := utils.CleanTemp(config); err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
		}
	}()

	logger, logClose, err := utils.NewLogger(config.LogDir, "tokentile")
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logClose.Close()

	if err := config.Save(path.Join(config.LogDir, "config.json")); err != nil {
		logger.Warn(err)
	}

	if config.CPUProfile {
		defer profile.Start(profile.ProfilePath(config.LogDir)).Stop()
	}

	io.WriteString(os.Stderr, "Loading submissions...\n")
	subs := loadSubmissions(dirs, lang)

	var base *submission.Submission
	if config.BaseCodeName != "" {
		kept := subs[:0]
		for _, s := range subs {
			if s.Name == config.BaseCodeName {
				base = s
			} else {
				kept = append(kept, s)
			}
		}
		subs = kept
		if base == nil {
			os.Stderr.WriteString(fmt.Sprintf("base code %s not found among submissions\n", config.BaseCodeName))
			os.Exit(1)
		}
	}

	d, err := driver.New(config, logger)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	io.WriteString(os.Stderr, "Comparing...\n")
	res, err := d.Run(ctx, subs, nil, base)
	if err != nil {
		logger.Error(err)
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if res.Canceled {
		io.WriteString(os.Stderr, "Interrupted; writing completed pairs.\n")
	}

	if config.NoCleanTemp {
		// The temp directory survives the run; leave the token
		// streams (as compared, after normalization) next to it
		// for troubleshooting.
		for _, s := range subs {
			if s.ParseError() != nil {
				continue
			}
			if err := d.DumpTokens(s); err != nil {
				logger.Warn(err)
			}
		}
		if base != nil {
			if err := d.DumpTokens(base); err != nil {
				logger.Warn(err)
			}
		}
	}

	io.WriteString(os.Stderr, "Writing results...\n")
	if err := d.WriteResults(runID, res, len(subs)); err != nil {
		logger.Error(err)
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if rss, err := utils.MaxRSSKb(); err == nil {
		logger.Infof("max RSS %d kb", rss)
	}
	io.WriteString(os.Stderr, fmt.Sprintf("Results in %s\n", config.ResultsDir))
}
