package distribution

import (
	"context"
	"time"

	"cofilab-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Worker consumes the distribution queue with a pool of goroutines and
// periodically sweeps the outbox for pending rows whose nudge never arrived.
type Worker struct {
	DB            *gorm.DB
	Queue         *Queue
	Job           *Job
	Workers       int
	SweepInterval time.Duration
}

// Run blocks until ctx is cancelled. Consumer and sweeper goroutines share
// an errgroup; a Redis failure in one consumer cancels the rest so the
// caller can restart the pool.
func (w *Worker) Run(ctx context.Context) error {
	workers := w.Workers
	if workers <= 0 {
		workers = 4
	}
	sweep := w.SweepInterval
	if sweep == 0 {
		sweep = 30 * time.Second
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				projectID, ok, err := w.Queue.Pop(ctx, 5*time.Second)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				if ok {
					w.ProcessProject(ctx, projectID)
				}
			}
		})
	}
	g.Go(func() error {
		ticker := time.NewTicker(sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				w.SweepPending(ctx)
			}
		}
	})
	return g.Wait()
}

// ProcessProject runs distribution for one project and settles its pending
// outbox rows. Failures leave the rows pending with the error recorded so
// the sweep retries them.
func (w *Worker) ProcessProject(ctx context.Context, projectID uint) {
	var jobs []domain.DistributionJob
	if err := w.DB.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, domain.DistributionJobPending).
		Find(&jobs).Error; err != nil {
		log.Error().Err(err).Uint("project_id", projectID).Msg("Outbox read failed")
		return
	}
	if len(jobs) == 0 {
		return
	}

	created, err := w.Job.Distribute(ctx, projectID)
	switch {
	case err == ErrProjectNotFound:
		// Project deleted between schedule and run; nothing left to do.
		w.markJobs(ctx, jobs, domain.DistributionJobDone, err.Error())
	case err != nil:
		log.Error().Err(err).Uint("project_id", projectID).Msg("Distribution run failed; will retry")
		w.recordFailure(ctx, jobs, err.Error())
	default:
		log.Info().Uint("project_id", projectID).Int("payments_created", created).Msg("Rewards distributed")
		w.markJobs(ctx, jobs, domain.DistributionJobDone, "")
	}
}

// SweepPending re-runs distribution for every project with pending outbox rows.
func (w *Worker) SweepPending(ctx context.Context) {
	var projectIDs []uint
	if err := w.DB.WithContext(ctx).Model(&domain.DistributionJob{}).
		Where("status = ?", domain.DistributionJobPending).
		Distinct().Pluck("project_id", &projectIDs).Error; err != nil {
		log.Error().Err(err).Msg("Outbox sweep failed")
		return
	}
	for _, id := range projectIDs {
		if ctx.Err() != nil {
			return
		}
		w.ProcessProject(ctx, id)
	}
}

func (w *Worker) markJobs(ctx context.Context, jobs []domain.DistributionJob, status, lastError string) {
	for _, job := range jobs {
		if err := w.DB.WithContext(ctx).Model(&domain.DistributionJob{}).Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"status":     status,
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": lastError,
			}).Error; err != nil {
			log.Error().Err(err).Uint("job_id", job.ID).Msg("Outbox update failed")
		}
	}
}

func (w *Worker) recordFailure(ctx context.Context, jobs []domain.DistributionJob, lastError string) {
	w.markJobs(ctx, jobs, domain.DistributionJobPending, lastError)
}
