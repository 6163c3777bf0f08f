// Copyright 2026, the Tokentile contributors.

package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tokentile/tokentile/submission"
	"github.com/tokentile/tokentile/token"
)

// tokStreamLanguage is the built-in debugging front-end: it reads
// pre-tokenized streams instead of source code.  Real language
// front-ends live outside this module and are consumed through the
// same capability struct.
//
// Each .tok line is:
//
//	TYPE line column length [flags [reads [writes]]]
//
// flags is a string containing 'c' (critical) and/or 'k' (control),
// or "-".  reads and writes are comma-separated variable names, or
// "-".  Lines starting with '#' are skipped.  Token types beginning
// with WS_ are excluded from matching.
func tokStreamLanguage() submission.Language {
	return submission.Language{
		Name:                  "tokstream",
		Suffixes:              []string{".tok"},
		MinimumTokenMatch:     9,
		TokensHaveSemantics:   true,
		SupportsNormalization: true,
		Excluded: func(t token.Type) bool {
			return strings.HasPrefix(string(t), "WS_")
		},
		Parse: parseTokenFiles,
	}
}

func parseTokenFiles(files []string, normalize bool) ([]token.Token, error) {

	var tokens []token.Token
	for _, file := range files {
		fid, err := os.Open(file)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", file)
		}

		scanner := bufio.NewScanner(fid)
		lnum := 0
		for scanner.Scan() {
			lnum++
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			tok, err := parseTokenLine(file, line)
			if err != nil {
				fid.Close()
				return nil, errors.Wrapf(err, "%s:%d", file, lnum)
			}
			tokens = append(tokens, tok)
		}
		if err := scanner.Err(); err != nil {
			fid.Close()
			return nil, errors.Wrapf(err, "reading %s", file)
		}
		fid.Close()
	}

	if len(tokens) == 0 {
		return nil, errors.New("no tokens")
	}
	return append(tokens, token.NewFileEnd(tokens[len(tokens)-1].File)), nil
}

func parseTokenLine(file, line string) (token.Token, error) {

	fields := strings.Fields(line)
	if len(fields) < 4 {
		return token.Token{}, errors.Errorf("want at least 4 fields, got %d", len(fields))
	}
	typ := token.Type(fields[0])
	if typ == token.FileEnd || typ == token.Separator {
		return token.Token{}, errors.Errorf("reserved token type %s", typ)
	}

	var nums [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return token.Token{}, errors.Wrapf(err, "field %d", i+2)
		}
		nums[i] = v
	}

	tok := token.Token{
		Type:   typ,
		File:   file,
		Line:   nums[0],
		Column: nums[1],
		Length: nums[2],
	}

	if len(fields) > 4 {
		sem := &token.Semantics{}
		for _, c := range fields[4] {
			switch c {
			case 'c':
				sem.Critical = true
			case 'k':
				sem.Control = true
			case '-':
			default:
				return token.Token{}, errors.Errorf("unknown flag %q", c)
			}
		}
		if len(fields) > 5 {
			sem.Reads = parseVars(fields[5])
		}
		if len(fields) > 6 {
			sem.Writes = parseVars(fields[6])
		}
		tok.Semantics = sem
	}
	return tok, nil
}

func parseVars(s string) []token.Variable {
	if s == "-" || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	vars := make([]token.Variable, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			vars = append(vars, token.Variable(p))
		}
	}
	return vars
}
