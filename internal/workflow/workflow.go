// Package workflow orchestrates question dispatch: it expands a question
// set, skips everything already persisted, fans the remainder out across a
// bounded worker pool, and persists each answer the moment it arrives.
// Retry wraps a whole dispatch, and Pipeline composes per-domain two-stage
// runs on top of it.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"robora/internal/query"
	"robora/internal/question"
	"robora/internal/store"
)

// DefaultWorkers bounds the worker pool when no count is configured.
const DefaultWorkers = 4

// DefaultFailureThreshold is the fraction of pending questions that may
// fail validation before the whole dispatch is considered failed.
const DefaultFailureThreshold = 0.5

// Failure records one question that could not be answered in this run.
// Failures are reported, never silently dropped.
type Failure struct {
	Question question.Question
	Err      error
}

// Report summarizes one dispatch.
type Report struct {
	RunID    string
	Total    int // questions after expansion and in-run dedup
	Skipped  int // already persisted, never re-dispatched
	Answered int // newly persisted in this run
	Failures []Failure
}

// Workflow dispatches question sets against a storage namespace.
type Workflow struct {
	handler          query.Handler
	storage          store.Provider
	workers          int
	failureThreshold float64
	log              *zap.Logger
}

// New creates a workflow. workers <= 0 falls back to DefaultWorkers.
func New(handler query.Handler, storage store.Provider, workers int, log *zap.Logger) *Workflow {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		handler:          handler,
		storage:          storage,
		workers:          workers,
		failureThreshold: DefaultFailureThreshold,
		log:              log,
	}
}

// SetFailureThreshold overrides the validation-failure fraction above which
// a dispatch fails. Values outside (0, 1] are ignored.
func (w *Workflow) SetFailureThreshold(f float64) {
	if f > 0 && f <= 1 {
		w.failureThreshold = f
	}
}

// AskMultiple produces answers for every question in the set that is not
// already persisted.
//
// Already-answered questions are never re-dispatched: re-running the same
// set against the same namespace after a partial failure only does the
// remaining work. Each successful answer is persisted immediately, so a
// crash loses at most the in-flight calls.
//
// When returnResults is true the newly produced answers (only those) are
// returned; otherwise callers enumerate the store afterwards. The report is
// always populated.
func (w *Workflow) AskMultiple(ctx context.Context, set question.Set, returnResults bool) ([]question.Answer, *Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := w.log.With(zap.String("run_id", report.RunID))

	expanded, err := set.Expand()
	if err != nil {
		return nil, report, err
	}

	// In-run dedup: at most one dispatch per fingerprint even when the
	// set expands to duplicate bindings.
	seen := make(map[string]bool, len(expanded))
	var pending []question.Question
	for _, q := range expanded {
		fp := q.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true

		exists, err := w.storage.Exists(ctx, fp)
		if err != nil {
			return nil, report, fmt.Errorf("partition questions: %w", err)
		}
		if exists {
			report.Skipped++
			continue
		}
		pending = append(pending, q)
	}
	report.Total = report.Skipped + len(pending)

	log.Info("dispatch starting",
		zap.Int("expanded", len(expanded)),
		zap.Int("pending", len(pending)),
		zap.Int("skipped", report.Skipped),
		zap.Int("workers", w.workers))

	var (
		mu       sync.Mutex
		answers  []question.Answer
		failures []Failure
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, q := range pending {
		q := q
		eg.Go(func() error {
			ans, err := w.handler.Answer(egCtx, q)
			if err != nil {
				if query.IsValidation(err) {
					log.Warn("answer failed validation",
						zap.String("fingerprint", q.Fingerprint()),
						zap.Error(err))
					mu.Lock()
					failures = append(failures, Failure{Question: q, Err: err})
					mu.Unlock()
					return nil
				}
				// Transient and fatal failures abort the dispatch; the
				// batch, not the question, is the unit of retry.
				return err
			}

			if err := w.storage.Put(egCtx, ans); err != nil {
				return fmt.Errorf("persist answer %s: %w", q.Fingerprint(), err)
			}
			mu.Lock()
			answers = append(answers, *ans)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		report.Answered = len(answers)
		report.Failures = failures
		return nil, report, err
	}

	report.Answered = len(answers)
	report.Failures = failures

	if n := len(pending); n > 0 {
		if frac := float64(len(failures)) / float64(n); frac > w.failureThreshold {
			return nil, report, fmt.Errorf("dispatch failed: %d of %d questions failed validation (threshold %.0f%%)",
				len(failures), n, w.failureThreshold*100)
		}
	}

	log.Info("dispatch complete",
		zap.Int("answered", report.Answered),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failures)))

	if !returnResults {
		return nil, report, nil
	}
	return answers, report, nil
}
