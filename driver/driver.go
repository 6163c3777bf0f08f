// Copyright 2026, the Tokentile contributors.

// Package driver schedules all-pairs comparisons: submission
// validation, base-code subtraction, normalization, Bloom pair
// screening, a bounded worker pool, and threshold/cap filtering.
package driver

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tokentile/tokentile/matcher"
	"github.com/tokentile/tokentile/normalize"
	"github.com/tokentile/tokentile/submission"
	"github.com/tokentile/tokentile/utils"
)

// Driver runs one comparison campaign over a submission set.
type Driver struct {
	cfg    *utils.Config
	m      *matcher.Matcher
	metric matcher.Metric
	log    *logrus.Logger

	sketches sync.Map
}

// Result collects the retained comparisons of a run.
type Result struct {
	Comparisons []*matcher.Comparison

	// Excluded names submissions dropped before comparing, with the
	// aggregate of their failures in Warnings.
	Excluded []string
	Warnings error

	// Canceled is set when the run stopped early; Comparisons then
	// holds only completed pairs.
	Canceled bool
}

// New builds a driver from a checked configuration.
func New(cfg *utils.Config, log *logrus.Logger) (*Driver, error) {
	m, err := matcher.New(cfg.MinimumTokenMatch, cfg.MergeBuffer, cfg.MergeLength)
	if err != nil {
		return nil, err
	}
	metric, err := matcher.ParseMetric(cfg.SimilarityMetric)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}
	return &Driver{cfg: cfg, m: m, metric: metric, log: log}, nil
}

// Matcher exposes the driver's matcher, mainly for tests and callers
// that want base-code state.
func (d *Driver) Matcher() *matcher.Matcher { return d.m }

type pair struct {
	a, b *submission.Submission
}

// Run compares every unordered pair of new submissions plus each
// new-old cross pair (old-old pairs are skipped).  The base
// submission, when present, is subtracted from every side first.
// Cancellation via ctx is not an error: completed pairs are returned.
func (d *Driver) Run(ctx context.Context, newSubs, oldSubs []*submission.Submission, base *submission.Submission) (*Result, error) {

	res := &Result{}

	valid, excluded, warns := d.filterValid(newSubs)
	validOld, excludedOld, warnsOld := d.filterValid(oldSubs)
	res.Excluded = append(excluded, excludedOld...)
	res.Warnings = multierr.Append(warns, warnsOld)

	if len(valid) == 0 {
		return nil, errors.New("no valid submissions remain after filtering")
	}

	// Normalization must come first: base-code masks are keyed to
	// token positions, so marking a stream that is reordered or
	// shrunk afterwards would corrupt the masks.
	if d.cfg.Normalize {
		d.normalizeAll(valid)
		d.normalizeAll(validOld)
		if base != nil {
			d.normalizeAll([]*submission.Submission{base})
		}
	}

	if base != nil {
		d.log.Infof("subtracting base code %s", base.Name)
		for _, s := range append(append([]*submission.Submission{}, valid...), validOld...) {
			if _, err := d.m.GenerateBaseCodeMarking(s, base); err != nil {
				return nil, errors.Wrapf(err, "base-code marking of %s", s.Name)
			}
		}
	}

	for _, s := range valid {
		d.logLowDiversity(s)
	}

	pairs := enumeratePairs(valid, validOld)
	d.log.Infof("comparing %d pairs with %d workers", len(pairs), d.cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	var mu sync.Mutex
	for _, pr := range pairs {
		pr := pr
		g.Go(func() error {
			select {
			case <-gctx.Done():
				// Cancellation at pair granularity; skipped
				// pairs simply never report.
				return nil
			default:
			}

			first, second := matcher.OrderPair(pr.a, pr.b)
			var cmp *matcher.Comparison
			if !d.screenPair(first, second) {
				cmp = &matcher.Comparison{First: first, Second: second}
			} else {
				var err error
				cmp, err = d.m.Compare(pr.a, pr.b)
				if err != nil {
					return errors.Wrapf(err, "comparing %s and %s", pr.a.Name, pr.b.Name)
				}
			}

			mu.Lock()
			res.Comparisons = append(res.Comparisons, cmp)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		res.Canceled = true
	}

	res.Comparisons = d.filterAndCap(res.Comparisons)
	return res, nil
}

// filterValid drops submissions that failed to parse or are shorter
// than MTM+1 tokens, logging each with a warning.
func (d *Driver) filterValid(subs []*submission.Submission) ([]*submission.Submission, []string, error) {
	var valid []*submission.Submission
	var excluded []string
	var warns error

	for _, s := range subs {
		switch {
		case s.ParseError() != nil:
			d.log.Warnf("excluding %s: parse failed: %v", s.Name, s.ParseError())
			excluded = append(excluded, s.Name)
			warns = multierr.Append(warns, errors.Wrapf(s.ParseError(), "%s", s.Name))
		case !s.Valid(d.cfg.MinimumTokenMatch):
			d.log.Warnf("excluding %s: %d tokens, need at least %d",
				s.Name, len(s.Tokens), d.cfg.MinimumTokenMatch+1)
			excluded = append(excluded, s.Name)
			warns = multierr.Append(warns,
				errors.Errorf("%s: too short (%d tokens)", s.Name, len(s.Tokens)))
		default:
			valid = append(valid, s)
		}
	}
	return valid, excluded, warns
}

// normalizeAll canonicalizes each submission's token stream, serially,
// before any comparison uses it.
func (d *Driver) normalizeAll(subs []*submission.Submission) {
	for _, s := range subs {
		if !s.Lang.SupportsNormalization || !s.Lang.TokensHaveSemantics {
			continue
		}
		before := len(s.Tokens)
		s.Tokens = normalize.Normalize(s.Tokens)
		if len(s.Tokens) != before {
			d.log.Debugf("%s: normalization kept %d of %d tokens",
				s.Name, len(s.Tokens), before)
		}
	}
}

func enumeratePairs(newSubs, oldSubs []*submission.Submission) []pair {
	var pairs []pair
	for i := range newSubs {
		for j := i + 1; j < len(newSubs); j++ {
			pairs = append(pairs, pair{newSubs[i], newSubs[j]})
		}
		for _, o := range oldSubs {
			pairs = append(pairs, pair{newSubs[i], o})
		}
	}
	return pairs
}

// filterAndCap applies the similarity threshold and keeps the top
// scoring comparisons up to the configured cap.
func (d *Driver) filterAndCap(cmps []*matcher.Comparison) []*matcher.Comparison {
	kept := cmps[:0]
	for _, c := range cmps {
		if c.Similarity(d.metric) >= d.cfg.SimilarityThreshold {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		si, sj := kept[i].Similarity(d.metric), kept[j].Similarity(d.metric)
		if si != sj {
			return si > sj
		}
		if kept[i].First.Name != kept[j].First.Name {
			return kept[i].First.Name < kept[j].First.Name
		}
		return kept[i].Second.Name < kept[j].Second.Name
	})

	if max := d.cfg.MaximumNumberOfComparisons; max > 0 && len(kept) > max {
		kept = kept[:max]
	}
	return kept
}
