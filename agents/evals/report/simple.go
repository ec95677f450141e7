/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"

	"chainguard.dev/evaltrace/agents/evals"
	"chainguard.dev/sdk/pathtree"
)

var _ Generator = Simple

// Simple walks a NamespacedObserver tree and renders it as a path tree with
// pass rates and average grades per namespace. Failures and below-threshold
// grades hang off their namespace as numbered children.
func Simple(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	tree := pathtree.New()
	tree.PrintOption = pathtree.KeyValueLabel
	hasFailure := false
	nodes := 0

	obs.Walk(func(name string, collector *evals.ResultCollector) {
		s := collector.Summarize(threshold)
		// Runners grade scorer namespaces once per case; bare Grade calls
		// without Increment still count.
		if s.Total == 0 && s.Grades == 0 && s.Failures == 0 {
			return
		}
		nodes++

		passRate := s.PassRate()
		below := (s.Total > 0 && passRate < threshold) || (s.Grades > 0 && s.Mean < threshold)
		if below {
			hasFailure = true
		}

		var value, label string
		switch {
		case s.Failures > 0 && s.Grades > 0:
			value = fmt.Sprintf("%.1f%% pass, %.2f avg", passRate*100, s.Mean)
			label = fmt.Sprintf("(%d/%d)", s.Total-int64(s.Failures), s.Total)
		case s.Grades > 0:
			value = fmt.Sprintf("%.2f avg", s.Mean)
			label = fmt.Sprintf("(%d %s, min %.2f)", s.Grades, plural(s.Grades, "result"), s.Min)
		default:
			value = fmt.Sprintf("%.1f%%", passRate*100)
			label = fmt.Sprintf("(%d/%d)", s.Total-int64(s.Failures), s.Total)
		}
		value = mark(below, value)

		if err := tree.Add(name, value, label); err != nil {
			_ = tree.Update(name, value, label)
		}

		n := 0
		for _, f := range collector.Failures() {
			n++
			_ = tree.Add(fmt.Sprintf("%s/%d", name, n), "FAIL", f)
		}
		for _, g := range collector.Grades() {
			if g.Score >= threshold {
				continue
			}
			n++
			_ = tree.Add(fmt.Sprintf("%s/%d", name, n), fmt.Sprintf("%.2f", g.Score), g.Reasoning)
		}
	})

	if nodes == 0 {
		return "", false
	}
	return tree.String(), hasFailure
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
