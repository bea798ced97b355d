package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is
// reported as disconnected.
type DBPinger interface {
	Ping() error
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

type Result struct {
	Status       string               `json:"status"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

// Collect pings the database and Redis and reports per-dependency status.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) Result {
	result := Result{Status: "ok", Dependencies: make(map[string]DepStatus)}

	dbStatus := DepStatus{Status: "disconnected"}
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbStatus = DepStatus{Status: "connected", PingMs: &ms}
		} else {
			dbStatus.Status = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["database"] = dbStatus

	redisStatus := DepStatus{Status: "disconnected"}
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisStatus = DepStatus{Status: "connected", PingMs: &ms}
		} else {
			redisStatus.Status = "error"
			result.Status = "degraded"
		}
	}
	result.Dependencies["redis"] = redisStatus

	return result
}

type Handlers struct {
	Rdb *redis.Client
	DB  DBPinger
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Collect(c.Context(), h.Rdb, h.DB))
}
