/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"

	"chainguard.dev/evaltrace/agents/evals"
)

// Generator is a function type that generates reports from a NamespacedObserver tree.
// It takes an observer tree and a threshold, returning a report string and a boolean
// indicating if any evaluations fell below the threshold.
type Generator func(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool)

// mark prefixes values that fell below the threshold.
func mark(below bool, value string) string {
	if below {
		return fmt.Sprintf("❌ %s", value)
	}
	return value
}
