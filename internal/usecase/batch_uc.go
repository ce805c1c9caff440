package usecase

import (
	"context"
	"time"

	"course-cover-generator/internal/domain/model"
	"course-cover-generator/internal/domain/ports/repository"
	"course-cover-generator/internal/infra/logging"
	"course-cover-generator/internal/infra/metrics"
	"course-cover-generator/internal/infra/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BatchResult aggregates one orchestrated run. Succeeded holds every item
// that ended in a success-classified outcome; Failed holds the last pass's
// failures, itemized with reasons.
type BatchResult struct {
	Succeeded []model.Outcome
	Failed    []model.Outcome
}

func (r *BatchResult) Counts() (rendered, skipped, failed int) {
	for _, o := range r.Succeeded {
		if o.Kind == model.OutcomeRendered {
			rendered++
		} else {
			skipped++
		}
	}
	return rendered, skipped, len(r.Failed)
}

// BatchUseCase fans work items out across a bounded worker pool and retries
// the failed subset up to MaxRetries passes with a fixed inter-pass delay.
// The delay is deliberately constant: exponential backoff belongs to the
// icon resolver's own single-call retries, a distinct, smaller-scope policy.
type BatchUseCase struct {
	covers         CoverGenerator
	store          repository.AssetConfigRepository
	workers        int
	maxRetries     int
	retryDelay     time.Duration
	overwrite      bool
	cleanupMissing bool
	log            *zerolog.Logger
}

func NewBatchUseCase(
	covers CoverGenerator,
	store repository.AssetConfigRepository,
	workers, maxRetries int,
	retryDelay time.Duration,
	overwrite, cleanupMissing bool,
	logger *zerolog.Logger,
) *BatchUseCase {
	if workers <= 0 {
		workers = 1
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	l := logger.With().Str("component", "BatchUC").Logger()
	return &BatchUseCase{
		covers:         covers,
		store:          store,
		workers:        workers,
		maxRetries:     maxRetries,
		retryDelay:     retryDelay,
		overwrite:      overwrite,
		cleanupMissing: cleanupMissing,
		log:            &l,
	}
}

// Run processes items to completion. Outcomes are collected in whatever
// order workers finish; only the aggregate matters. Cancellation is honored
// between passes and submits; an in-flight render finishes its own timeout.
func (uc *BatchUseCase) Run(ctx context.Context, items []model.WorkItem) (*BatchResult, error) {
	batchID := uuid.NewString()
	ctx = logging.WithBatchID(ctx, batchID)
	log := logging.With(ctx, uc.log)
	log.Info().Int("items", len(items)).Int("workers", uc.workers).Int("max_retries", uc.maxRetries).Msg("batch started")

	result := &BatchResult{}
	pending := items

	for pass := 0; len(pending) > 0 && pass < uc.maxRetries; pass++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		metrics.IncBatchPass()
		outcomes := uc.runPass(ctx, pending, log)

		var next []model.WorkItem
		result.Failed = result.Failed[:0]
		for _, o := range outcomes {
			metrics.IncOutcome(o.Kind.String(), o.Item.Lang)
			if o.Kind.Success() {
				result.Succeeded = append(result.Succeeded, o)
			} else {
				result.Failed = append(result.Failed, o)
				next = append(next, o.Item)
			}
		}
		pending = next

		if err := ctx.Err(); err != nil {
			return result, err
		}
		if len(pending) > 0 && pass+1 < uc.maxRetries {
			log.Warn().Int("pending", len(pending)).Int("pass", pass+1).
				Dur("delay", uc.retryDelay).Msg("retrying failed items after delay")
			select {
			case <-time.After(uc.retryDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	if uc.cleanupMissing {
		uc.pruneMissing(ctx, result, log)
	}

	rendered, skipped, failed := result.Counts()
	log.Info().Int("rendered", rendered).Int("skipped", skipped).Int("failed", failed).Msg("batch finished")
	return result, nil
}

// runPass dispatches every pending item across the pool and waits for
// exactly one outcome per item, arrival order unspecified.
func (uc *BatchUseCase) runPass(ctx context.Context, pending []model.WorkItem, log *zerolog.Logger) []model.Outcome {
	pool := worker.NewPool(uc.workers)
	pool.Start(ctx)
	defer pool.Stop()

	results := make(chan model.Outcome, len(pending))
	submitted := 0
	for _, item := range pending {
		item := item
		err := pool.Submit(ctx, func(ctx context.Context) {
			results <- uc.covers.Generate(ctx, item, nil, uc.overwrite)
		})
		if err != nil {
			results <- model.Failed(item, "not dispatched: "+err.Error())
		}
		submitted++
	}

	outcomes := make([]model.Outcome, 0, submitted)
	for len(outcomes) < submitted {
		select {
		case o := <-results:
			if o.Kind == model.OutcomeFailed {
				log.Warn().Str("item", o.Item.String()).Str("reason", o.Reason).Msg("item failed")
			}
			outcomes = append(outcomes, o)
		case <-ctx.Done():
			// Workers exit on cancellation with tasks still queued; those
			// tasks never report. Wait out the in-flight ones, then account
			// for every undelivered item so the pass still yields exactly
			// one outcome per item.
			pool.Stop()
			return collectAfterCancel(ctx, pending, outcomes, results, log)
		}
	}
	return outcomes
}

// collectAfterCancel drains outcomes delivered around the cancellation and
// synthesizes a Failed outcome for every item that never got one.
func collectAfterCancel(ctx context.Context, pending []model.WorkItem, outcomes []model.Outcome, results chan model.Outcome, log *zerolog.Logger) []model.Outcome {
	draining := true
	for draining {
		select {
		case o := <-results:
			outcomes = append(outcomes, o)
		default:
			draining = false
		}
	}
	delivered := make(map[model.WorkItem]bool, len(outcomes))
	for _, o := range outcomes {
		delivered[o.Item] = true
	}
	undelivered := 0
	for _, item := range pending {
		if !delivered[item] {
			outcomes = append(outcomes, model.Failed(item, "cancelled: "+ctx.Err().Error()))
			undelivered++
		}
	}
	log.Warn().Int("undelivered", undelivered).Msg("pass cancelled, remaining items marked failed")
	return outcomes
}

// pruneMissing removes cache keys for courses whose final failure was
// specifically "course not found". Transient failures are never pruned: a
// flaky network must not cost a course its stable visual identity.
func (uc *BatchUseCase) pruneMissing(ctx context.Context, result *BatchResult, log *zerolog.Logger) {
	seen := map[string]bool{}
	var missing []string
	for _, o := range result.Failed {
		if o.Kind == model.OutcomeNotFound && !seen[o.Item.Course] {
			seen[o.Item.Course] = true
			missing = append(missing, o.Item.Course)
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := uc.store.Remove(ctx, missing); err != nil {
		log.Error().Err(err).Msg("cleanup of missing courses failed")
		return
	}
	log.Info().Strs("courses", missing).Msg("removed cache entries for missing courses")
}
