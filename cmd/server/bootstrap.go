package main

import (
	"github.com/BINU242/refref/internal/config"
	"github.com/BINU242/refref/internal/models"
	"github.com/BINU242/refref/internal/services"
	"github.com/BINU242/refref/internal/utils"
	"github.com/BINU242/refref/pkg/logger"
)

// appServices holds the initialized long-lived services.
type appServices struct {
	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.SchedulerService
	email     *services.EmailService
}

// bootstrap initializes all application dependencies: database, queue, workers
// and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitSystemLogger(models.GetDB())

	// Task queue: Redis-backed when enabled, in-process otherwise. The email
	// service processes invitation deliveries from either.
	emailService := services.NewEmailService(models.GetDB(), &cfg.Widget)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(emailService.ProcessEmailTask)
	}

	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(emailService.ProcessEmailTask)
			if err := worker.Start(); err != nil {
				logger.Warn().Err(err).Msg("Failed to start async worker")
			}
		}
	}

	scheduler := services.NewSchedulerService(models.GetDB())
	scheduler.Start()

	return &appServices{
		taskQueue: taskQueue,
		worker:    worker,
		scheduler: scheduler,
		email:     emailService,
	}
}

// shutdown gracefully stops the background services.
func (s *appServices) shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("background services stopped")
}
