package services

import (
	"context"
	"moldcare-backend/models"
	"strings"
	"time"
)

// CompleteStep marks one of the 5 process steps done and re-derives the legacy
// status from the fixed step mapping. The derived status change deliberately
// does not append a statusHistory entry; only UpdateStatus writes the audit
// trail. Whether step completion should also log history is a product
// decision that has so far been answered with "no".
func (s *ServiceRequestService) CompleteStep(ctx context.Context, actor *models.User, id string, step int) (*models.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, NewForbiddenError("Only administrators can manage process steps")
	}
	if step < 1 || step > models.ProcessStepCount {
		return nil, NewValidationError("step must be between 1 and 5")
	}

	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ps := &sr.ProcessSteps[step-1]
	ps.Completed = true
	ps.CompletedAt = &now
	ps.CompletedBy = actor.ID
	ps.CompletedByName = actor.Name

	s.applyStatus(sr, models.StepStatusMapping[step], actor, "", false)

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save step completion", err)
	}

	s.logger.Infof("Step %d of %s completed by %s", step, sr.RequestID, actor.ID)
	return sr, nil
}

// UncompleteStep reverts a completed step. It requires the step to have been
// completed and never touches the legacy status.
func (s *ServiceRequestService) UncompleteStep(ctx context.Context, actor *models.User, id string, step int) (*models.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, NewForbiddenError("Only administrators can manage process steps")
	}
	if step < 1 || step > models.ProcessStepCount {
		return nil, NewValidationError("step must be between 1 and 5")
	}

	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ps := &sr.ProcessSteps[step-1]
	if !ps.Completed {
		return nil, NewBusinessError("Step is not completed")
	}

	ps.Completed = false
	ps.CompletedAt = nil
	ps.CompletedBy = ""
	ps.CompletedByName = ""

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save step change", err)
	}

	s.logger.Infof("Step %d of %s reverted by %s", step, sr.RequestID, actor.ID)
	return sr, nil
}

// AddStepComment appends to the step's comment thread. Like the other
// process-tracking operations this is an admin action; clients follow the
// thread read-only through the request document.
func (s *ServiceRequestService) AddStepComment(ctx context.Context, actor *models.User, id string, step int, content string) (*models.ServiceRequest, error) {
	if !actor.IsAdmin() {
		return nil, NewForbiddenError("Only administrators can comment on process steps")
	}
	if step < 1 || step > models.ProcessStepCount {
		return nil, NewValidationError("step must be between 1 and 5")
	}
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content is required")
	}

	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ps := &sr.ProcessSteps[step-1]
	ps.Comments = append(ps.Comments, models.StepComment{
		Content:    strings.TrimSpace(content),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Timestamp:  time.Now(),
	})

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save comment", err)
	}
	return sr, nil
}
