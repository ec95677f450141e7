/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals runs labelled cases through a task and a set of scorers while
recording OpenTelemetry spans for every step.

# Overview

A Runner takes a Task and any number of Scorers. Each call to Run consumes a
sequence of EvalCase values and produces a RunResult holding one score list
per score name, indexed by case, plus one error message per failed case.

For every case the runner emits three spans:

  - "eval": the case itself, carrying the input, expected value, output,
    scores and, when present, the dataset origin
  - "task": a child of eval wrapping the task invocation
  - "score": a child of eval wrapping every scorer, marked with the scorer
    purpose so scorers never see it through a trace context

When the runner has a span cache, every span is mirrored into it under the
eval span's id so scorers can read the trace back through
tracecontext.TraceContext.

# Core Components

  - Runner: executes cases sequentially or with bounded parallelism
  - Task, TaskFunc, NewTask: the function under evaluation
  - Scorer, ScorerFunc3, ScorerFunc4, ScorerFunc5, NewScorer: graders of
    increasing arity, resolved once when the scorer is built
  - Score: a named score; scorers may also return plain numbers
  - EvalCase, CasesFrom, SliceCases, SeqCases: case construction
  - RunResult, Progress, TaskError, ScorerError: run outcomes
  - Observer, NamespacedObserver, ResultCollector, MetricsObserver: outcome
    reporting hooks

# Basic Usage

	exact := evals.ExactMatch()
	runner, err := evals.NewRunner(evals.TaskFunc(answer), []evals.Scorer{exact},
		evals.WithTracer(tp.Tracer("evals")),
		evals.WithCache(cache))
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, evals.SliceCases(
		evals.EvalCase{Input: "2+2", Expected: "4"},
		evals.EvalCase{Input: "3+3", Expected: "6"},
	), evals.WithParallelism(4))
	if err != nil {
		return err // configuration error, nothing ran
	}
	if res.Failed() {
		for _, msg := range res.Errors {
			log.Print(msg)
		}
	}

# Failure Isolation

A task that fails or panics fails only its own case: the error
"Task failed for input '<input>': <message>" is recorded and the case gets no
scores. Scorers for a case run one after another and a failing scorer does not
stop the others. All scorer failures for a case are joined into a single
"Scorers failed for input '<input>': <name>: <message>; ..." error.

# Scorers With Trace Access

ScorerFunc5 scorers receive a trace context for the case:

	grounded := evals.MustScorer("grounded", evals.ScorerFunc5(
		func(ctx context.Context, input, expected, output any, md map[string]any, tc *tracecontext.TraceContext) (any, error) {
			thread, err := tc.GetThread(ctx)
			if err != nil {
				return nil, err
			}
			return judge(ctx, thread, output)
		}))

The ExactToolCalls, RequiredToolCalls, OnlyToolCalls and NoErrors scorers are
built this way.

# Observers

Use a NamespacedObserver to get one child per scorer:

	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewMetricsObserver(experiment, name))
	})
	runner, _ := evals.NewRunner(task, scorers, evals.WithObserver(obs))

The root node sees one Increment per case and every task failure; each scorer
child sees its own grades and failures. The report package renders the tree.
*/
package evals
