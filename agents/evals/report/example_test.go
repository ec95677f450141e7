/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report_test

import (
	"fmt"

	"chainguard.dev/evaltrace/agents/evals"
	"chainguard.dev/evaltrace/agents/evals/report"
)

func ExampleSimple() {
	obs := evals.NewNamespacedObserver(func(string) *evals.ResultCollector {
		return evals.NewResultCollector(nil)
	})
	obs.Child("exact_match").Grade(0.5, "off by one")

	_, failed := report.Simple(obs, 0.8)
	fmt.Println("below threshold:", failed)
	// Output: below threshold: true
}
