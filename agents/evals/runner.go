/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"fmt"
	"slices"
	"time"

	"chainguard.dev/evaltrace/agents/agenttrace"
	"chainguard.dev/evaltrace/agents/metrics"
	"chainguard.dev/evaltrace/agents/spancache"
	"chainguard.dev/evaltrace/agents/tracecontext"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// MaxParallelism bounds the number of cases a single Run may have in flight.
const MaxParallelism = 64

// Progress describes one completed case.
type Progress struct {
	Index  int
	Input  any
	Output any
	Scores map[string]float64
	// Error is a *TaskError or *ScorerError when the case failed.
	Error error
}

// Runner runs cases through a task and a set of scorers. A Runner holds no
// per-run state and may be reused.
type Runner struct {
	task    Task
	scorers []Scorer

	tracer    trace.Tracer
	cache     *spancache.Cache
	traceOpts []tracecontext.Option
	observer  Observer
	metrics   *metrics.Evals

	experimentID   string
	experimentName string
	projectID      string
	projectName    string
}

// Option configures a Runner.
type Option func(*Runner)

// WithTracer sets the tracer used for case spans. Without it the tracer is
// taken from the run context, falling back to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithCache registers cache for the duration of each run so that spans are
// mirrored into it and scorers can read them back.
func WithCache(c *spancache.Cache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithTraceContextOptions configures the trace context handed to scorers,
// for example a remote fetcher.
func WithTraceContextOptions(opts ...tracecontext.Option) Option {
	return func(r *Runner) { r.traceOpts = append(r.traceOpts, opts...) }
}

// WithExperiment sets the experiment identifiers. A random id is used when
// unset.
func WithExperiment(id, name string) Option {
	return func(r *Runner) { r.experimentID, r.experimentName = id, name }
}

// WithProject sets the project identifiers.
func WithProject(id, name string) Option {
	return func(r *Runner) { r.projectID, r.projectName = id, name }
}

// WithObserver reports case outcomes to obs. A NamespacedObserver gets one
// child per scorer.
func WithObserver(obs Observer) Option {
	return func(r *Runner) { r.observer = obs }
}

// WithMetrics records OpenTelemetry metrics for each case and score.
func WithMetrics(m *metrics.Evals) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner validates task and scorers and returns a Runner.
func NewRunner(task Task, scorers []Scorer, opts ...Option) (*Runner, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidTask)
	}
	if f, ok := task.(TaskFunc); ok && f == nil {
		return nil, fmt.Errorf("%w: nil function", ErrInvalidTask)
	}
	for i, s := range scorers {
		if s == nil {
			return nil, fmt.Errorf("%w: scorer %d is nil", ErrInvalidScorer, i)
		}
	}

	r := &Runner{
		task:     task,
		scorers:  slices.Clone(scorers),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.metrics == nil {
		r.metrics = metrics.NewEvals(agenttrace.InstrumentationName)
	}
	if r.experimentID == "" {
		r.experimentID = uuid.NewString()
	}
	if r.experimentName == "" {
		r.experimentName = r.experimentID
	}
	return r, nil
}

// ExperimentID returns the experiment this runner reports under.
func (r *Runner) ExperimentID() string { return r.experimentID }

type runConfig struct {
	parallelism int
	progress    func(Progress)
	parent      agenttrace.Destination
}

// RunOption configures a single Run.
type RunOption func(*runConfig)

// WithParallelism bounds the number of cases in flight. Values of 1 or less
// run cases sequentially in order.
func WithParallelism(n int) RunOption {
	return func(c *runConfig) { c.parallelism = n }
}

// WithProgress calls fn once per completed case. With parallelism above one
// fn is called concurrently and in completion order.
func WithProgress(fn func(Progress)) RunOption {
	return func(c *runConfig) { c.progress = fn }
}

// WithParent sets the destination recorded on every span of the run. It
// defaults to the runner's experiment.
func WithParent(d agenttrace.Destination) RunOption {
	return func(c *runConfig) { c.parent = d }
}

// Run executes every case and returns once all of them are done. Case
// failures are reported in the result; only configuration errors are
// returned.
func (r *Runner) Run(ctx context.Context, cases Cases, opts ...RunOption) (*RunResult, error) {
	cfg := runConfig{parallelism: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parallelism > MaxParallelism {
		return nil, fmt.Errorf("%w: %d exceeds the maximum of %d", ErrInvalidParallelism, cfg.parallelism, MaxParallelism)
	}
	if cases == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidCases)
	}
	if cfg.parent.IsZero() {
		cfg.parent = agenttrace.Destination{Kind: agenttrace.ExperimentID, ID: r.experimentID}
	}

	ctx = agenttrace.WithParent(ctx, cfg.parent)
	if r.tracer != nil {
		ctx = agenttrace.WithTracer(ctx, r.tracer)
	}
	if r.cache != nil {
		ctx = spancache.Register(ctx, r.cache)
	}
	log := clog.FromContext(ctx).With("experiment", r.experimentID)
	ctx = clog.WithLogger(ctx, log)

	start := time.Now()
	state := &runState{}
	if cfg.parallelism <= 1 {
		for c := range cases {
			i, out := state.next()
			r.runCase(ctx, cfg, state, i, out, c)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.parallelism)
		for c := range cases {
			i, out := state.next()
			g.Go(func() error {
				r.runCase(ctx, cfg, state, i, out, c)
				return nil
			})
		}
		// Cases never return errors; this is a barrier.
		_ = g.Wait()
	}

	res := state.result()
	res.ExperimentID, res.ExperimentName = r.experimentID, r.experimentName
	res.ProjectID, res.ProjectName = r.projectID, r.projectName
	res.Duration = time.Since(start)

	log.Infof("Completed %d cases with %d errors in %s", res.Cases, len(res.Errors), res.Duration)
	return res, nil
}

func (r *Runner) runCase(ctx context.Context, cfg runConfig, state *runState, index int, out *caseOutcome, c EvalCase) {
	start := time.Now()
	log := clog.FromContext(ctx).With("case", index)

	ctx, evalSpan := agenttrace.StartRoot(ctx, "eval", agenttrace.SpanAttributes{Type: agenttrace.TypeEval})
	defer evalSpan.End()
	evalSpan.Log(agenttrace.Event{Input: c.Input, Expected: c.Expected, Metadata: c.Metadata})
	if c.Origin != nil {
		evalSpan.SetAttributes(agenttrace.JSON(agenttrace.OriginKey, c.Origin))
	}
	if len(c.Tags) > 0 {
		evalSpan.SetAttributes(agenttrace.JSON(agenttrace.TagsKey, c.Tags))
	}

	r.observer.Increment()
	progress := Progress{Index: index, Input: c.Input}
	if cfg.progress != nil {
		defer func() { cfg.progress(progress) }()
	}

	output, err := r.runTask(ctx, c.Input)
	if err != nil {
		terr := &TaskError{Input: c.Input, Err: err}
		log.Warnf("Task failed: %v", err)
		evalSpan.SetError(terr.Error())
		state.fail(index, terr.Error())
		r.observer.Fail(terr.Error())
		r.metrics.RecordCase(ctx, r.experimentID, metrics.OutcomeTaskFailed, time.Since(start))
		progress.Error = terr
		return
	}
	evalSpan.Log(agenttrace.Event{Output: output})
	progress.Output = output

	scores, failures := r.score(ctx, evalSpan.RootID(), c, output)
	out.scores = scores
	progress.Scores = scores
	if len(scores) > 0 {
		evalSpan.Log(agenttrace.Event{Scores: scores})
	}

	if len(failures) > 0 {
		serr := &ScorerError{Input: c.Input, Failures: failures}
		log.Warnf("%d scorers failed", len(failures))
		state.fail(index, serr.Error())
		r.metrics.RecordCase(ctx, r.experimentID, metrics.OutcomeScorersFailed, time.Since(start))
		progress.Error = serr
		return
	}
	r.metrics.RecordCase(ctx, r.experimentID, metrics.OutcomeSucceeded, time.Since(start))
}

func (r *Runner) runTask(ctx context.Context, input any) (output any, err error) {
	ctx, span := agenttrace.StartSpan(ctx, "task", agenttrace.SpanAttributes{Type: agenttrace.TypeTask})
	defer span.End()
	span.Log(agenttrace.Event{Input: input})

	defer func() {
		if p := recover(); p != nil {
			output, err = nil, fmt.Errorf("panic: %v", p)
		}
		if err != nil {
			span.RecordError(err)
			return
		}
		span.Log(agenttrace.Event{Output: output})
	}()
	return r.task.Run(ctx, input)
}

// score runs every scorer for a case. Scorers run one after another and a
// failing scorer does not stop the rest.
func (r *Runner) score(ctx context.Context, rootID string, c EvalCase, output any) (map[string]float64, []ScorerFailure) {
	if len(r.scorers) == 0 {
		return nil, nil
	}
	ctx, span := agenttrace.StartSpan(ctx, "score", agenttrace.SpanAttributes{
		Type:    agenttrace.TypeScore,
		Purpose: agenttrace.PurposeScorer,
	})
	defer span.End()

	tc := tracecontext.New(tracecontext.Configuration{
		ObjectType: "experiment",
		ObjectID:   r.experimentID,
		RootSpanID: rootID,
	}, spancache.Current(ctx), r.traceOpts...)
	args := ScoreArgs{
		Input:    c.Input,
		Expected: c.Expected,
		Output:   output,
		Metadata: c.Metadata,
		Trace:    tc,
	}

	scores := make(map[string]float64, len(r.scorers))
	var failures []ScorerFailure
	for _, s := range r.scorers {
		obs, child := r.scorerObserver(s.Name())
		if child {
			obs.Increment()
		}

		results, err := runScorer(ctx, s, args)
		if err != nil {
			span.RecordError(err, trace.WithAttributes(attribute.String("scorer", s.Name())))
			failures = append(failures, ScorerFailure{Scorer: s.Name(), Err: err})
			obs.Fail(fmt.Sprintf("%s: %v", s.Name(), err))
			r.metrics.RecordScorerFailure(ctx, r.experimentID, s.Name())
			continue
		}
		for _, res := range results {
			if res.Score == nil {
				continue
			}
			scores[res.Name] = *res.Score
			reasoning, _ := res.Metadata["reasoning"].(string)
			obs.Grade(*res.Score, reasoning)
			r.metrics.RecordScore(ctx, r.experimentID, res.Name, *res.Score)
		}
	}
	if len(scores) > 0 {
		span.Log(agenttrace.Event{Scores: scores})
	}
	return scores, failures
}

// scorerObserver returns the observer for a scorer's results and whether it
// is a dedicated child of the runner's observer.
func (r *Runner) scorerObserver(name string) (Observer, bool) {
	if ns, ok := r.observer.(namespacer); ok {
		return ns.Namespace(name), true
	}
	return r.observer, false
}

func runScorer(ctx context.Context, s Scorer, args ScoreArgs) (scores []Score, err error) {
	defer func() {
		if p := recover(); p != nil {
			scores, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	v, err := s.Score(ctx, args)
	if err != nil {
		return nil, err
	}
	return normalizeScores(s.Name(), v)
}
