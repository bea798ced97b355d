package distribution

import (
	"context"
	"strconv"
	"time"

	"cofilab-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const queueKey = "rewards:distribution:queue"

// Queue is the durable dispatch path for distribution work. The outbox row
// is the source of truth (inserted in the same transaction that validates a
// task); the Redis list is only a latency optimization, and the periodic
// sweep picks up rows whose nudge was lost.
type Queue struct {
	Rdb *redis.Client
}

// EnqueueTx inserts the outbox row. Must be called inside the transaction
// that performs the triggering mutation.
func EnqueueTx(tx *gorm.DB, projectID uint) error {
	return tx.Create(&domain.DistributionJob{
		ProjectID: projectID,
		Status:    domain.DistributionJobPending,
	}).Error
}

// Nudge pushes the project id onto the Redis list after the outbox commit.
// Best effort: a lost nudge only delays the work until the next sweep.
func (q *Queue) Nudge(ctx context.Context, projectID uint) {
	if err := q.Rdb.LPush(ctx, queueKey, strconv.FormatUint(uint64(projectID), 10)).Err(); err != nil {
		log.Warn().Err(err).Uint("project_id", projectID).Msg("Distribution nudge failed; sweep will pick it up")
	}
}

// Pop blocks up to timeout for a nudged project id. ok is false on timeout.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (uint, bool, error) {
	res, err := q.Rdb.BRPop(ctx, timeout, queueKey).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(res[1], 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return uint(id), true, nil
}
