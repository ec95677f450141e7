/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testevals adapts testing.TB to the evals.Observer interface so that
// eval runs can be driven from go test.
//
// Task and scorer failures become test errors and grades are logged. With
// WithThreshold, grades below the threshold fail the test as well.
//
//	func TestAnswers(t *testing.T) {
//	    obs := testevals.Namespaced(t, testevals.WithThreshold(0.8))
//	    runner, err := evals.NewRunner(task, scorers, evals.WithObserver(obs))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    if _, err := runner.Run(ctx, cases, evals.WithParallelism(4)); err != nil {
//	        t.Fatal(err)
//	    }
//	}
//
// The observer is safe for concurrent use because testing.TB is.
package testevals
