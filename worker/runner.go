package worker

import (
	"context"
	"fmt"

	"moldcare-backend/dal"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"moldcare-backend/utils/logger"
)

// Service wraps the background worker for easy integration
type Service struct {
	worker  *models.Worker
	sweeper *SLASweeper
	logger  logger.Logger
}

// NewService creates a new worker service
func NewService(ctx context.Context, cfg *models.Config, log logger.Logger) (*Service, error) {
	worker, err := NewWorker(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create background worker: %w", err)
	}

	dbclient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	requestRepo := repository.NewServiceRequestRepository(dbclient, cfg, log)

	return &Service{
		worker:  worker,
		sweeper: NewSLASweeper(requestRepo, cfg, log),
		logger:  log,
	}, nil
}

// StartInBackground starts the worker in the background
func (s *Service) StartInBackground() error {
	s.logger.Info("Starting background worker service")

	go func() {
		w := &Worker{Worker: s.worker, sweeper: s.sweeper}
		if err := w.Start(); err != nil {
			s.logger.Errorf("Background worker failed to start: %v", err)
		}
	}()

	return nil
}

// Stop stops the worker service
func (s *Service) Stop() error {
	w := &Worker{Worker: s.worker, sweeper: s.sweeper}
	s.logger.Info("Stopping background worker service")
	return w.Stop()
}

// GetStatus returns the current infrastructure setup status
func (s *Service) GetStatus() (*models.ExecutionResult, error) {
	w := &Worker{Worker: s.worker}
	return w.GetStatus()
}

// IsSetupCompleted checks if infrastructure setup is completed
func (s *Service) IsSetupCompleted() (bool, error) {
	status, err := s.GetStatus()
	if err != nil {
		return false, err
	}

	return status.Status == models.StatusCompleted && status.Success, nil
}

// GetHealthStatus returns a health status for monitoring
func (s *Service) GetHealthStatus() map[string]interface{} {
	w := &Worker{Worker: s.worker}
	status, err := s.GetStatus()
	if err != nil {
		return map[string]interface{}{
			"status":         "error",
			"message":        fmt.Sprintf("Failed to get status: %v", err),
			"healthy":        false,
			"worker_running": w.IsRunning(),
		}
	}

	healthy := status.Status == models.StatusCompleted && status.Success

	return map[string]interface{}{
		"status":         string(status.Status),
		"healthy":        healthy,
		"worker_running": w.IsRunning(),
		"tables_created": status.TablesCreated,
		"retry_count":    status.RetryCount,
		"environment":    status.Environment,
		"start_time":     status.StartTime,
		"duration":       status.Duration.String(),
		"swept_requests": status.SweptRequests,
		"marked_overdue": status.MarkedOverdue,
		"error_message":  status.ErrorMessage,
	}
}
