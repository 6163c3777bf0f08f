// Copyright 2026, the Tokentile contributors.

package driver

import (
	"encoding/json"
	"os"
	"path"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/matcher"
	"github.com/tokentile/tokentile/submission"
	"github.com/tokentile/tokentile/token"
)

// reportMatch is the persisted form of one matched region.  Start and
// end fields are line numbers when the front-end reports positions,
// token indices otherwise.
type reportMatch struct {
	FileA  string `json:"fileA"`
	FileB  string `json:"fileB"`
	StartA int    `json:"startA"`
	EndA   int    `json:"endA"`
	StartB int    `json:"startB"`
	EndB   int    `json:"endB"`
	Tokens int    `json:"tokens"`
}

type reportComparison struct {
	First        string             `json:"first"`
	Second       string             `json:"second"`
	Similarities map[string]float64 `json:"similarities"`
	Matches      []reportMatch      `json:"matches"`
}

type runHeader struct {
	RunID       string   `json:"runId"`
	Metric      string   `json:"metric"`
	Threshold   float64  `json:"threshold"`
	Submissions int      `json:"submissions"`
	Comparisons int      `json:"comparisons"`
	Excluded    []string `json:"excluded,omitempty"`
}

// WriteResults persists the run as snappy-framed JSON lines: one
// header object, then one object per retained comparison.
func (d *Driver) WriteResults(runID string, res *Result, submissions int) error {

	outname := path.Join(d.cfg.ResultsDir, "results.jsonl.sz")
	fid, err := os.Create(outname)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outname)
	}
	defer fid.Close()
	wtr := snappy.NewBufferedWriter(fid)
	defer wtr.Close()

	enc := json.NewEncoder(wtr)
	hdr := runHeader{
		RunID:       runID,
		Metric:      string(d.metric),
		Threshold:   d.cfg.SimilarityThreshold,
		Submissions: submissions,
		Comparisons: len(res.Comparisons),
		Excluded:    res.Excluded,
	}
	if err := enc.Encode(hdr); err != nil {
		return errors.Wrap(err, "writing results header")
	}

	for _, c := range res.Comparisons {
		rc := reportComparison{
			First:        c.First.Name,
			Second:       c.Second.Name,
			Similarities: make(map[string]float64, len(matcher.Metrics)),
		}
		for _, met := range matcher.Metrics {
			rc.Similarities[string(met)] = c.Similarity(met)
		}
		for _, mt := range c.Matches {
			rc.Matches = append(rc.Matches, reportedMatch(c, mt))
		}
		if err := enc.Encode(rc); err != nil {
			return errors.Wrapf(err, "writing comparison %s/%s", rc.First, rc.Second)
		}
	}

	d.log.Infof("wrote %d comparisons to %s", len(res.Comparisons), outname)
	return nil
}

func reportedMatch(c *matcher.Comparison, mt matcher.Match) reportMatch {
	fa := c.First.Tokens[mt.StartInFirst]
	la := c.First.Tokens[mt.EndInFirst()-1]
	fb := c.Second.Tokens[mt.StartInSecond]
	lb := c.Second.Tokens[mt.EndInSecond()-1]

	rm := reportMatch{
		FileA:  fa.File,
		FileB:  fb.File,
		Tokens: mt.Length,
	}
	if fa.Line != token.NoValue && fb.Line != token.NoValue {
		rm.StartA, rm.EndA = fa.Line, la.Line
		rm.StartB, rm.EndB = fb.Line, lb.Line
	} else {
		rm.StartA, rm.EndA = mt.StartInFirst, mt.EndInFirst()-1
		rm.StartB, rm.EndB = mt.StartInSecond, mt.EndInSecond()-1
	}
	return rm
}

// DumpTokens writes a submission's token stream to the temp directory,
// one token per line, snappy compressed.  Useful when troubleshooting
// normalization.
func (d *Driver) DumpTokens(s *submission.Submission) error {
	outname := path.Join(d.cfg.TempDir, "tokens_"+s.Name+".txt.sz")
	fid, err := os.Create(outname)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outname)
	}
	defer fid.Close()
	wtr := snappy.NewBufferedWriter(fid)
	defer wtr.Close()

	enc := json.NewEncoder(wtr)
	for _, t := range s.Tokens {
		if err := enc.Encode(t); err != nil {
			return errors.Wrapf(err, "dumping tokens of %s", s.Name)
		}
	}
	return nil
}
