package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TaskStatusTodo = "todo"
	TaskStatusDone = "done"
)

// Task carries a positive weight that determines its share of the project
// budget. RewardSats is a cache of the last allocation, overwritten as a
// batch whenever any sibling task changes. Rewarded is monotonic false→true;
// once set the distribution job never touches the task again.
type Task struct {
	ID           uint            `gorm:"column:id;primaryKey" json:"id"`
	ProjectID    uint            `gorm:"column:project_id;not null;index" json:"project_id"`
	Title        string          `gorm:"column:title;size:100;not null" json:"title"`
	Description  string          `gorm:"column:description" json:"description"`
	Weight       decimal.Decimal `gorm:"column:weight;type:decimal(6,2);not null;default:1.0" json:"weight"`
	AssignedToID *uint           `gorm:"column:assigned_to_id" json:"assigned_to_id"`
	AssignedTo   *User           `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Status       string          `gorm:"column:status;size:30;not null;default:'todo'" json:"status"`
	Validated    bool            `gorm:"column:validated;not null;default:false" json:"validated"`
	RewardSats   int64           `gorm:"column:reward_sats;not null;default:0" json:"reward_sats"`
	Rewarded     bool            `gorm:"column:rewarded;not null;default:false" json:"rewarded"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`

	Payments []Payment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
