/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders evaluation outcomes as markdown.

Two views are available:

  - Simple: a path tree mirroring a NamespacedObserver tree of
    ResultCollectors, with each failure and below-threshold grade as a
    numbered child of its namespace
  - Run: one table row per score name of an evals.RunResult, followed by the
    run's case errors

Both return the rendered report and whether anything fell below the threshold.

	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewMetricsObserver(experiment, name))
	})
	res, _ := runner.Run(ctx, cases)

	out, failed := report.Simple(obs, 0.8)
	fmt.Print(out)
	out, failed = report.Run(res, 0.8)

Generators do not modify their inputs and may be called concurrently.
*/
package report
