package services

import (
	"context"
	"errors"
	"fmt"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"sort"
	"strings"
	"sync"
	"time"

	"moldcare-backend/utils/logger"

	"github.com/go-playground/validator/v10"
)

// ServiceRequestService implements the service request lifecycle: creation,
// the legacy status engine with its audit history, listings and stats.
type ServiceRequestService struct {
	repo     repository.ServiceRequestRepositoryInterface
	userRepo repository.UserRepositoryInterface
	config   *models.Config
	logger   logger.Logger
	validate *validator.Validate
}

// NewServiceRequestService creates a new service request service
func NewServiceRequestService(repo repository.ServiceRequestRepositoryInterface, userRepo repository.UserRepositoryInterface, cfg *models.Config, log logger.Logger) *ServiceRequestService {
	return &ServiceRequestService{
		repo:     repo,
		userRepo: userRepo,
		config:   cfg,
		logger:   log,
		validate: validator.New(),
	}
}

// Create builds a new request with the caller's profile snapshot, all 5
// process steps initialized, and a seeded status history entry.
func (s *ServiceRequestService) Create(ctx context.Context, actor *models.User, req *models.CreateServiceRequest) (*models.ServiceRequest, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError(validationMessage(err))
	}
	if strings.TrimSpace(req.ServiceType) == "" {
		return nil, NewValidationError("service_type is required")
	}
	if strings.TrimSpace(req.ProblemDescription) == "" {
		return nil, NewValidationError("problem_description is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now()

	sr := &models.ServiceRequest{
		ClientID:      actor.ID,
		ClientName:    actor.Name,
		ClientEmail:   actor.Email,
		ClientCompany: actor.Company,

		ServiceType:         strings.TrimSpace(req.ServiceType),
		MachineModel:        req.MachineModel,
		MachineSerialNumber: req.MachineSerialNumber,
		ProblemDescription:  strings.TrimSpace(req.ProblemDescription),
		Priority:            priority,

		CurrentStatus: models.RequestStatusReceived,
		ReceivedAt:    now,

		SLATargetHours: s.config.DefaultSLATargetHours,

		StatusHistory: []models.StatusHistoryEntry{{
			Status:        models.RequestStatusReceived,
			ChangedBy:     actor.ID,
			ChangedByName: actor.Name,
			ChangedAt:     now,
			Notes:         "Service request submitted",
			DurationMs:    0,
		}},

		Attachments:     []models.Attachment{},
		Notes:           []models.RequestNote{},
		Findings:        []string{},
		WorkPerformed:   []string{},
		Recommendations: []string{},
	}

	for i := 0; i < models.ProcessStepCount; i++ {
		sr.ProcessSteps[i] = models.ProcessStep{
			Name:     models.ProcessStepNames[i],
			Comments: []models.StepComment{},
		}
	}

	created, err := s.repo.Create(ctx, sr)
	if err != nil {
		return nil, NewInternalError("Failed to create service request", err)
	}
	return created, nil
}

// Get loads a request, hiding soft-deleted documents and enforcing ownership
// for non-admin callers. Callers may pass either the storage id or the
// human-readable SR-YYYYMM-#### id.
func (s *ServiceRequestService) Get(ctx context.Context, actor *models.User, id string) (*models.ServiceRequest, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRequestNotFound) && strings.HasPrefix(id, "SR-") {
		sr, err = s.repo.GetByRequestID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, NewNotFoundError("Service request not found")
		}
		return nil, NewInternalError("Failed to load service request", err)
	}
	if sr.IsDeleted {
		return nil, NewNotFoundError("Service request not found")
	}
	if !actor.IsAdmin() && sr.ClientID != actor.ID {
		return nil, NewForbiddenError("You do not have access to this service request")
	}
	return sr, nil
}

// applyStatus is the single status change command. History logging and the
// per-status timestamps are tied together behind logHistory: the step-derived
// status projection deliberately skips both, keeping the legacy and step-based
// models independently observable.
func (s *ServiceRequestService) applyStatus(sr *models.ServiceRequest, newStatus models.RequestStatus, actor *models.User, notes string, logHistory bool) {
	now := time.Now()

	if logHistory {
		base := sr.ReceivedAt
		if n := len(sr.StatusHistory); n > 0 {
			base = sr.StatusHistory[n-1].ChangedAt
		}
		sr.StatusHistory = append(sr.StatusHistory, models.StatusHistoryEntry{
			Status:        newStatus,
			ChangedBy:     actor.ID,
			ChangedByName: actor.Name,
			ChangedAt:     now,
			Notes:         notes,
			DurationMs:    now.Sub(base).Milliseconds(),
		})

		switch newStatus {
		case models.RequestStatusReceived:
			sr.ReceivedAt = now
		case models.RequestStatusPending:
			sr.PendingAt = &now
		case models.RequestStatusInProgress:
			sr.InProgressAt = &now
		case models.RequestStatusCompleted:
			sr.CompletedAt = &now
			sr.TotalDurationHours = now.Sub(sr.ReceivedAt).Hours()
		}
	}

	sr.CurrentStatus = newStatus
}

// UpdateStatus runs the legacy status transition with a fresh audit entry.
// There are no transition guards: repeated or backward moves always append.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, actor *models.User, id string, req *models.UpdateStatusRequest) (*models.ServiceRequest, error) {
	if !models.ValidStatus(req.Status) {
		return nil, NewValidationError("status must be one of received, pending, in_progress, completed")
	}

	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	s.applyStatus(sr, req.Status, actor, req.Notes, true)

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save status change", err)
	}

	s.logger.Infof("Service request %s moved to %s by %s", sr.RequestID, req.Status, actor.ID)
	return sr, nil
}

// BulkUpdateStatus applies the same status change to each id independently
// and concurrently. Every item gets its own result; there is no cross-item
// transaction or rollback.
func (s *ServiceRequestService) BulkUpdateStatus(ctx context.Context, actor *models.User, req *models.BulkStatusRequest) []models.BulkItemResult {
	results := make([]models.BulkItemResult, len(req.IDs))

	var wg sync.WaitGroup
	for i, id := range req.IDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := s.UpdateStatus(ctx, actor, id, &models.UpdateStatusRequest{Status: req.Status, Notes: req.Notes})
			if err != nil {
				results[i] = models.BulkItemResult{ID: id, OK: false, Error: MessageOf(err)}
				return
			}
			results[i] = models.BulkItemResult{ID: id, OK: true}
		}(i, id)
	}
	wg.Wait()

	return results
}

// List returns the filtered, sorted, paginated slice of requests visible to
// the actor. Clients only ever see their own requests; soft-deleted documents
// are excluded for everyone.
func (s *ServiceRequestService) List(ctx context.Context, actor *models.User, filter *models.ServiceRequestFilter) ([]*models.ServiceRequest, *models.Pagination, error) {
	var all []*models.ServiceRequest
	var err error

	if actor.IsAdmin() {
		all, err = s.repo.ListAll(ctx)
	} else {
		all, err = s.repo.ListByClient(ctx, actor.ID)
	}
	if err != nil {
		return nil, nil, NewInternalError("Failed to list service requests", err)
	}

	filtered := make([]*models.ServiceRequest, 0, len(all))
	for _, sr := range all {
		if sr.IsDeleted {
			continue
		}
		if filter.Status != "" && sr.CurrentStatus != filter.Status {
			continue
		}
		if filter.Priority != "" && sr.Priority != filter.Priority {
			continue
		}
		if filter.IsOverdue != nil && sr.IsOverdue != *filter.IsOverdue {
			continue
		}
		filtered = append(filtered, sr)
	}

	sortRequests(filtered, filter.SortBy, filter.SortOrder)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	offset := (page - 1) * limit

	var pageItems []*models.ServiceRequest
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		pageItems = filtered[offset:end]
	} else {
		pageItems = []*models.ServiceRequest{}
	}

	return pageItems, &models.Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

func sortRequests(requests []*models.ServiceRequest, sortBy, sortOrder string) {
	less := func(a, b *models.ServiceRequest) bool {
		switch sortBy {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "priority":
			return priorityRank(a.Priority) < priorityRank(b.Priority)
		case "request_id":
			return a.RequestID < b.RequestID
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(requests, func(i, j int) bool {
		if sortOrder == "asc" {
			return less(requests[i], requests[j])
		}
		return less(requests[j], requests[i])
	})
}

func priorityRank(p models.RequestPriority) int {
	switch p {
	case models.PriorityLow:
		return 0
	case models.PriorityMedium:
		return 1
	case models.PriorityHigh:
		return 2
	case models.PriorityUrgent:
		return 3
	}
	return 1
}

// Stats aggregates counts across all non-deleted requests
func (s *ServiceRequestService) Stats(ctx context.Context) (*models.RequestStats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, NewInternalError("Failed to load service requests", err)
	}

	stats := &models.RequestStats{
		ByStatus: map[string]int{
			string(models.RequestStatusReceived):   0,
			string(models.RequestStatusPending):    0,
			string(models.RequestStatusInProgress): 0,
			string(models.RequestStatusCompleted):  0,
		},
	}

	var completionSum float64
	var completionCount int

	for _, sr := range all {
		if sr.IsDeleted {
			continue
		}
		stats.Total++
		stats.ByStatus[string(sr.CurrentStatus)]++
		if sr.IsOverdue {
			stats.Overdue++
		}
		if sr.IsArchived {
			stats.Archived++
		}
		if sr.CurrentStatus == models.RequestStatusCompleted && sr.TotalDurationHours > 0 {
			completionSum += sr.TotalDurationHours
			completionCount++
		}
	}

	if completionCount > 0 {
		stats.AvgCompletionHours = completionSum / float64(completionCount)
	}

	return stats, nil
}

// AddNote appends a free-text note. Clients may only annotate their own request.
func (s *ServiceRequestService) AddNote(ctx context.Context, actor *models.User, id, content string) (*models.ServiceRequest, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content is required")
	}

	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	sr.Notes = append(sr.Notes, models.RequestNote{
		Content:    strings.TrimSpace(content),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		CreatedAt:  time.Now(),
	})

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save note", err)
	}
	return sr, nil
}

// AttachFiles records uploaded file metadata on the request
func (s *ServiceRequestService) AttachFiles(ctx context.Context, actor *models.User, id string, attachments []models.Attachment) (*models.ServiceRequest, error) {
	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	sr.Attachments = append(sr.Attachments, attachments...)

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save attachments", err)
	}
	return sr, nil
}

// Assign sets the responsible technician (admin only, enforced at the route)
func (s *ServiceRequestService) Assign(ctx context.Context, actor *models.User, id, assigneeID string) (*models.ServiceRequest, error) {
	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	assignee, err := s.userRepo.GetUserByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewNotFoundError("Assignee not found")
		}
		return nil, NewInternalError("Failed to look up assignee", err)
	}

	now := time.Now()
	sr.AssignedTo = assignee.ID
	sr.AssignedToName = assignee.Name
	sr.AssignedAt = &now

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save assignment", err)
	}

	s.logger.Infof("Service request %s assigned to %s", sr.RequestID, assignee.ID)
	return sr, nil
}

// Archive flags the request as archived without hiding it from listings
func (s *ServiceRequestService) Archive(ctx context.Context, actor *models.User, id string) (*models.ServiceRequest, error) {
	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sr.IsArchived = true
	sr.ArchivedAt = &now
	sr.ArchivedBy = actor.ID

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to archive service request", err)
	}
	return sr, nil
}

// SoftDelete hides the request from all default listings. The document is
// never physically removed by the API.
func (s *ServiceRequestService) SoftDelete(ctx context.Context, actor *models.User, id string) error {
	sr, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	now := time.Now()
	sr.IsDeleted = true
	sr.DeletedAt = &now

	if err := s.repo.Save(ctx, sr); err != nil {
		return NewInternalError("Failed to delete service request", err)
	}

	s.logger.Infof("Service request %s soft-deleted by %s", sr.RequestID, actor.ID)
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Sprintf("field %s failed validation (%s)", f.Field(), f.Tag())
	}
	return err.Error()
}
