/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"chainguard.dev/evaltrace/agents/evals"
	"gopkg.in/yaml.v3"
)

// suite is the case file read by the runner. Each case may carry a recorded
// output under "output", which the replay task returns for that input.
type suite struct {
	Experiment string           `yaml:"experiment"`
	Project    string           `yaml:"project"`
	Scorers    []string         `yaml:"scorers"`
	Cases      []map[string]any `yaml:"cases"`
}

func loadSuite(path string) (*suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cases: %w", err)
	}
	defer f.Close()
	return parseSuite(f)
}

func parseSuite(r io.Reader) (*suite, error) {
	var s suite
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding cases: %w", err)
	}
	if len(s.Cases) == 0 {
		return nil, fmt.Errorf("%w: no cases", evals.ErrInvalidCases)
	}
	if len(s.Scorers) == 0 {
		s.Scorers = []string{"exact_match"}
	}
	return &s, nil
}

// cases converts the suite's records, rejecting malformed ones up front.
func (s *suite) cases() (evals.Cases, error) {
	out := make([]evals.EvalCase, 0, len(s.Cases))
	for i, rec := range s.Cases {
		c, err := evals.CaseFrom(rec)
		if err != nil {
			return nil, fmt.Errorf("case %d: %w", i, err)
		}
		out = append(out, c)
	}
	return evals.SliceCases(out...), nil
}

// replay returns a task answering each input with its recorded output.
// Inputs without a recorded output fail.
func (s *suite) replay() evals.Task {
	outputs := make(map[string]any, len(s.Cases))
	for _, rec := range s.Cases {
		if out, ok := rec["output"]; ok {
			outputs[agenttrace.Encode(rec["input"])] = out
		}
	}
	return evals.TaskFunc(func(_ context.Context, input any) (any, error) {
		out, ok := outputs[agenttrace.Encode(input)]
		if !ok {
			return nil, fmt.Errorf("no recorded output for %v", input)
		}
		return out, nil
	})
}

var builtinScorers = map[string]func() evals.Scorer{
	"exact_match":   evals.ExactMatch,
	"contains":      evals.Contains,
	"no_errors":     evals.NoErrors,
	"no_tool_calls": evals.NoToolCalls,
}

func scorersByName(names []string) ([]evals.Scorer, error) {
	out := make([]evals.Scorer, 0, len(names))
	for _, name := range names {
		mk, ok := builtinScorers[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown scorer %q", evals.ErrInvalidScorer, name)
		}
		out = append(out, mk())
	}
	return out, nil
}
