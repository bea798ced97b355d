package app

import (
	"cofilab-backend/internal/auth"
	"cofilab-backend/internal/config"
	"cofilab-backend/internal/database"
	"cofilab-backend/internal/distribution"
	"cofilab-backend/internal/funding"
	"cofilab-backend/internal/health"
	"cofilab-backend/internal/middleware"
	"cofilab-backend/internal/payments"
	"cofilab-backend/internal/projects"
	"cofilab-backend/internal/rewards"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App bundles the Fiber app with the connections and the distribution worker
// the entrypoint needs.
type App struct {
	Fiber  *fiber.App
	DB     *gorm.DB
	Rdb    *redis.Client
	Worker *distribution.Worker
}

// sqlPinger adapts *gorm.DB to the health DBPinger.
type sqlPinger struct{ db *gorm.DB }

func (p sqlPinger) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// New builds the Fiber app with all global middleware and route
// registration.
func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)

	fiberApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	fiberApp.Use(middleware.Tracing())
	fiberApp.Use(middleware.RouteLogger())

	// Services
	tokens := &auth.TokenStore{Rdb: rdb}
	queue := &distribution.Queue{Rdb: rdb}
	job := &distribution.Job{DB: db}
	rewardService := &rewards.Service{DB: db}
	projectService := &projects.Service{DB: db, Queue: queue}
	gate := &funding.Gate{DB: db, Secret: cfg.WebhookSecret}
	paymentService := &payments.Service{
		DB: db,
		Oracle: &payments.HTTPOracle{
			BaseURL: cfg.SettlementURL,
			Timeout: cfg.SettlementTimeout,
		},
	}

	// Handlers
	healthHandlers := &health.Handlers{Rdb: rdb, DB: sqlPinger{db}}
	fundingHandlers := &funding.Handlers{Gate: gate}
	paymentHandlers := &payments.Handlers{Service: paymentService}
	projectHandlers := &projects.Handlers{Service: projectService}
	rewardHandlers := &rewards.Handlers{Service: rewardService}

	// Public routes: webhook senders and settlement pollers carry no session.
	fiberApp.Get("/health/json", healthHandlers.JSON)
	fiberApp.Post("/webhook/funding", fundingHandlers.HandleWebhook)
	fiberApp.Get("/payments/verify/:invoice_id", paymentHandlers.Verify)

	// Authenticated routes
	requireAuth := middleware.RequireAuth(tokens, db)
	fiberApp.Post("/projects", requireAuth, projectHandlers.CreateProject)
	fiberApp.Get("/projects/:id/tasks", requireAuth, projectHandlers.ListTasks)
	fiberApp.Post("/tasks", requireAuth, projectHandlers.CreateTask)
	fiberApp.Put("/tasks/:id", requireAuth, projectHandlers.UpdateTask)
	fiberApp.Delete("/tasks/:id", requireAuth, projectHandlers.DeleteTask)
	fiberApp.Post("/tasks/:id/validate", requireAuth, projectHandlers.ValidateTask)
	fiberApp.Get("/recalculate-rewards/:project_id", requireAuth, rewardHandlers.Recalculate)
	fiberApp.Post("/payments/create", requireAuth, paymentHandlers.Create)
	fiberApp.Get("/payments/history/:user_id", requireAuth, paymentHandlers.History)

	worker := &distribution.Worker{
		DB:      db,
		Queue:   queue,
		Job:     job,
		Workers: cfg.DistributionWorkers,
	}

	return &App{Fiber: fiberApp, DB: db, Rdb: rdb, Worker: worker}, nil
}
