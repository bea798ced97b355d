package domain

import (
	"time"
)

const (
	DistributionJobPending = "pending"
	DistributionJobDone    = "done"
)

// DistributionJob is the outbox row for reward distribution. Inserted in the
// same transaction that validates a task, so a validated task always has a
// distribution attempt on record even if the process dies before the queue
// nudge goes out.
type DistributionJob struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	ProjectID uint      `gorm:"column:project_id;not null;index" json:"project_id"`
	Status    string    `gorm:"column:status;size:30;not null;default:'pending';index" json:"status"`
	Attempts  int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError string    `gorm:"column:last_error" json:"last_error,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DistributionJob) TableName() string {
	return "distribution_jobs"
}
