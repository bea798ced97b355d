package rewards

import (
	"github.com/shopspring/decimal"
)

// TaskWeight pairs a task id with its weight for allocation.
type TaskWeight struct {
	TaskID uint
	Weight decimal.Decimal
}

// Allocate computes each task's integral share of the project budget:
// floor(budget * weight / totalWeight) per task. A zero total weight is
// treated as 1 to avoid division by zero. Truncation loss stays with the
// budget and is not redistributed. Pure function: identical inputs always
// produce identical outputs.
func Allocate(budget int64, tasks []TaskWeight) map[uint]int64 {
	out := make(map[uint]int64, len(tasks))
	if len(tasks) == 0 {
		return out
	}

	total := decimal.Zero
	for _, t := range tasks {
		total = total.Add(t.Weight)
	}
	if total.IsZero() {
		total = decimal.NewFromInt(1)
	}

	b := decimal.NewFromInt(budget)
	for _, t := range tasks {
		out[t.TaskID] = b.Mul(t.Weight).Div(total).Floor().IntPart()
	}
	return out
}
