// Package pipeline provides the high-level orchestration for cover letter
// generation: draft, judge, and refine each job until it clears the quality
// gate or runs out of attempts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/outreach-agent/internal/drafter"
	"github.com/jonathan/outreach-agent/internal/judge"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/observability"
	"github.com/jonathan/outreach-agent/internal/refiner"
	"github.com/jonathan/outreach-agent/internal/rubric"
	"github.com/jonathan/outreach-agent/internal/run"
	"github.com/jonathan/outreach-agent/internal/types"
)

// retryBaseDelay is the first backoff interval; each retry doubles it.
const retryBaseDelay = 2 * time.Second

// Options holds the tunable behavior of one pipeline run.
type Options struct {
	MaxRefinements  int
	MaxRetries      int
	CallTimeout     time.Duration
	RateInterval    time.Duration
	MaxParallelJobs int

	// Verbose prints each verdict to Progress (stdout when nil).
	Verbose  bool
	Progress io.Writer
}

// Orchestrator drives the per-job state machine over a run.
type Orchestrator struct {
	drafter *drafter.Drafter
	judge   *judge.Judge
	refiner *refiner.Refiner
	rubric  *rubric.Rubric
	opts    Options

	// Set when Verbose; printMu keeps parallel jobs from interleaving boxes.
	printer *observability.Printer
	printMu sync.Mutex

	// One gate per provider, so drafting pressure never starves the judge.
	genGate  *rate.Limiter
	evalGate *rate.Limiter
}

// New builds an orchestrator. Zero option fields fall back to safe values.
func New(d *drafter.Drafter, j *judge.Judge, r *refiner.Refiner, rb *rubric.Rubric, opts Options) *Orchestrator {
	if opts.MaxParallelJobs < 1 {
		opts.MaxParallelJobs = 1
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 90 * time.Second
	}

	gate := rate.Limit(rate.Inf)
	if opts.RateInterval > 0 {
		gate = rate.Every(opts.RateInterval)
	}

	var printer *observability.Printer
	if opts.Verbose {
		out := opts.Progress
		if out == nil {
			out = os.Stdout
		}
		printer = observability.NewPrinter(out)
	}

	return &Orchestrator{
		drafter:  d,
		judge:    j,
		refiner:  r,
		rubric:   rb,
		opts:     opts,
		printer:  printer,
		genGate:  rate.NewLimiter(gate, 1),
		evalGate: rate.NewLimiter(gate, 1),
	}
}

// Run processes every job against the open run and finalizes it. The run is
// finalized even when individual jobs fail; the returned stats reflect all
// recorded outcomes. Duplicate jobs (same dedupe key) are processed once.
func (o *Orchestrator) Run(ctx context.Context, r *run.Run, profile *types.CandidateProfile, postings []*types.JobPosting) (types.RunStats, error) {
	log := r.Logger()

	var mu sync.Mutex
	seen := make(map[string]bool, len(postings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxParallelJobs)

	for _, posting := range postings {
		key := posting.DedupeKey()

		mu.Lock()
		if seen[key] {
			mu.Unlock()
			log.Infow("skipping duplicate job", "job", key, "title", posting.Title, "company", posting.Company)
			continue
		}
		seen[key] = true
		mu.Unlock()

		job := posting
		g.Go(func() error {
			outcome, reason := o.processJob(gctx, r, profile, job)
			if err := r.RecordOutcome(job.DedupeKey(), outcome, reason); err != nil {
				return fmt.Errorf("failed to record outcome for %s: %w", job.DedupeKey(), err)
			}
			return nil
		})
	}

	runErr := g.Wait()

	if err := r.Finalize(); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			log.Warnw("finalize failed after run error", "error", err)
		}
	}

	return r.Stats(), runErr
}

// processJob runs one job through draft, judge, and bounded refinement. It
// always returns a terminal outcome; errors along the way map onto fail
// reasons instead of propagating.
func (o *Orchestrator) processJob(ctx context.Context, r *run.Run, profile *types.CandidateProfile, job *types.JobPosting) (types.Outcome, types.FailReason) {
	log := r.Logger()
	jobID := job.DedupeKey()

	if !job.Usable() {
		log.Warnw("job missing description or company", "job", jobID)
		return types.OutcomeFailed, types.ReasonInvalidInput
	}

	// Draft.
	var doc *types.Document
	err := o.withRetry(ctx, o.genGate, func(callCtx context.Context) error {
		var draftErr error
		doc, draftErr = o.drafter.Draft(callCtx, profile, job)
		return draftErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return types.OutcomeFailed, types.ReasonCancelled
		}
		log.Errorw("drafting failed", "job", jobID, "error", err)
		return types.OutcomeFailed, types.ReasonDraftUnrecoverable
	}

	if _, err := r.Store().SaveDocument(ctx, doc); err != nil {
		log.Errorw("failed to persist draft", "job", jobID, "error", err)
		return types.OutcomeFailed, types.ReasonDraftUnrecoverable
	}

	// Judge the draft. An evaluate error here means the verdict could not be
	// persisted, so the draft stage is what failed, not the quality gate.
	verdict, err := o.evaluate(ctx, r, doc, job)
	if err != nil {
		if ctx.Err() != nil {
			return types.OutcomeFailed, types.ReasonCancelled
		}
		return types.OutcomeFailed, types.ReasonDraftUnrecoverable
	}
	if verdict.Pass {
		log.Infow("draft passed", "job", jobID)
		return types.OutcomePassedFirstTry, ""
	}

	// Refinement loop.
	for attempt := 1; attempt <= o.opts.MaxRefinements; attempt++ {
		log.Infow("refining", "job", jobID, "attempt", attempt, "failing", len(verdict.FailingCriteria()))

		var refined *types.Document
		err := o.withRetry(ctx, o.genGate, func(callCtx context.Context) error {
			var refineErr error
			refined, refineErr = o.refiner.Refine(callCtx, doc, job, verdict, attempt)
			return refineErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return types.OutcomeFailed, types.ReasonCancelled
			}
			log.Errorw("refinement failed", "job", jobID, "attempt", attempt, "error", err)
			return types.OutcomeFailed, types.ReasonRefineUnrecoverable
		}

		if _, err := r.Store().SaveDocument(ctx, refined); err != nil {
			log.Errorw("failed to persist refinement", "job", jobID, "attempt", attempt, "error", err)
			return types.OutcomeFailed, types.ReasonRefineUnrecoverable
		}
		doc = refined

		verdict, err = o.evaluate(ctx, r, doc, job)
		if err != nil {
			if ctx.Err() != nil {
				return types.OutcomeFailed, types.ReasonCancelled
			}
			return types.OutcomeFailed, types.ReasonRefineUnrecoverable
		}
		if verdict.Pass {
			log.Infow("refinement passed", "job", jobID, "attempt", attempt)
			return types.OutcomePassedAfterRefine, ""
		}
	}

	log.Warnw("quality gate exhausted", "job", jobID, "refinements", o.opts.MaxRefinements)
	return types.OutcomeFailed, types.ReasonQualityGateExhausted
}

// evaluate judges a document and persists the verdict before returning it.
// An unparseable or unreachable judge fails closed: the job gets a failing
// verdict for every criterion rather than an unexamined pass.
func (o *Orchestrator) evaluate(ctx context.Context, r *run.Run, doc *types.Document, job *types.JobPosting) (*types.Verdict, error) {
	log := r.Logger()

	checks := rubric.CheckText(doc.Content)
	log.Infow("letter checks", "job", doc.JobID, "stage", doc.Stage,
		"words", rubric.WordCount(doc.Content), "word_count_ok", checks.WordCountOK,
		"no_banned", checks.NoBanned, "bullet_list", checks.HasBulletList)

	var verdict *types.Verdict
	err := o.withRetry(ctx, o.evalGate, func(callCtx context.Context) error {
		var evalErr error
		verdict, evalErr = o.judge.Evaluate(callCtx, doc, job, o.rubric)
		return evalErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		var parseErr *judge.ParseError
		if errors.As(err, &parseErr) {
			log.Warnw("judge response unparseable, failing closed", "job", doc.JobID, "stage", doc.Stage)
		} else {
			log.Warnw("judge unavailable, failing closed", "job", doc.JobID, "stage", doc.Stage, "error", err)
		}
		verdict = judge.FailClosedVerdict(doc, o.rubric, err)
	}

	if saveErr := r.Store().SaveVerdict(ctx, verdict); saveErr != nil {
		log.Errorw("failed to persist verdict", "job", doc.JobID, "stage", doc.Stage, "error", saveErr)
		return nil, saveErr
	}

	if o.printer != nil {
		o.printMu.Lock()
		o.printer.PrintVerdict(verdict)
		o.printMu.Unlock()
	}
	return verdict, nil
}

// withRetry runs fn under the provider gate and per-call timeout, retrying
// transient provider errors with exponential backoff. Parse errors are not
// transient and return immediately.
func (o *Orchestrator) withRetry(ctx context.Context, gate *rate.Limiter, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= o.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := gate.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

// isTransient reports whether an error is worth retrying. Provider transport
// failures and empty responses are; everything else is terminal.
func isTransient(err error) bool {
	var genErr *llm.GenerationError
	if errors.As(err, &genErr) {
		return true
	}
	var emptyErr *llm.EmptyResponseError
	if errors.As(err, &emptyErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
