package worker

import (
	"context"
	"time"

	"moldcare-backend/models"
	"moldcare-backend/repository"
	"moldcare-backend/utils/logger"
)

// SLASweeper periodically flags service requests whose SLA window has
// elapsed. The overdue flag is sticky: once set it is never reset, even if
// the target is later raised.
type SLASweeper struct {
	repo   repository.ServiceRequestRepositoryInterface
	config *models.Config
	logger logger.Logger
}

// NewSLASweeper creates a new SLA sweeper
func NewSLASweeper(repo repository.ServiceRequestRepositoryInterface, cfg *models.Config, log logger.Logger) *SLASweeper {
	return &SLASweeper{
		repo:   repo,
		config: cfg,
		logger: log,
	}
}

// Sweep walks all open requests and marks the ones past their SLA target.
// Returns how many requests were inspected and how many were newly flagged.
func (s *SLASweeper) Sweep(ctx context.Context) (int, int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now()
	swept := 0
	marked := 0

	for _, sr := range all {
		if sr.IsDeleted || sr.CurrentStatus == models.RequestStatusCompleted || sr.IsOverdue {
			continue
		}
		swept++

		target := sr.SLATargetHours
		if target <= 0 {
			target = s.config.DefaultSLATargetHours
		}

		elapsed := now.Sub(sr.ReceivedAt).Hours()
		if elapsed <= float64(target) {
			continue
		}

		sr.IsOverdue = true
		if err := s.repo.Save(ctx, sr); err != nil {
			s.logger.Errorf("Failed to flag %s as overdue: %v", sr.RequestID, err)
			sr.IsOverdue = false
			continue
		}

		marked++
		s.logger.Warnf("Service request %s is past its %dh SLA target (%.1fh elapsed)", sr.RequestID, target, elapsed)
	}

	if marked > 0 {
		s.logger.Infof("SLA sweep flagged %d of %d open requests as overdue", marked, swept)
	} else {
		s.logger.Debugf("SLA sweep inspected %d open requests, none overdue", swept)
	}

	return swept, marked, nil
}
