package repository

import (
	"context"
	"errors"
	"fmt"
	"moldcare-backend/dal"
	"moldcare-backend/models"
	"time"

	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"
)

// ErrRequestNotFound is returned when no service request matches the lookup key
var ErrRequestNotFound = errors.New("service request not found")

type ServiceRequestRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

// NewServiceRequestRepository creates a new service request repository
func NewServiceRequestRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *ServiceRequestRepository {
	return &ServiceRequestRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *ServiceRequestRepository) tableName() string {
	return r.config.DynamoDBTablePrefix + "_service_requests"
}

func (r *ServiceRequestRepository) counterTable() string {
	return r.config.DynamoDBTablePrefix + "_counters"
}

// nextRequestID generates the human-readable id SR-YYYYMM-#### where #### is
// a per-calendar-month sequence maintained by an atomic counter, so concurrent
// creations within a month never collide.
func (r *ServiceRequestRepository) nextRequestID(ctx context.Context, now time.Time) (string, error) {
	counterID := fmt.Sprintf("SR-%s", now.Format("200601"))
	seq, err := r.db.IncrementCounter(ctx, r.counterTable(), counterID)
	if err != nil {
		return "", fmt.Errorf("failed to allocate request sequence: %w", err)
	}
	return fmt.Sprintf("%s-%04d", counterID, seq), nil
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	now := time.Now()

	requestID, err := r.nextRequestID(ctx, now)
	if err != nil {
		return nil, err
	}

	req.ID = utils.GenerateUUID()
	req.RequestID = requestID
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Version = 1

	// expectedVersion 0 asserts the item does not exist yet
	if err := r.db.PutItemVersioned(ctx, r.tableName(), req, 0); err != nil {
		r.logger.Errorf("Failed to create service request: %v", err)
		return nil, err
	}

	r.logger.Infof("Service request created: %s (%s)", req.RequestID, req.ID)
	return req, nil
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req := &models.ServiceRequest{}
	if err := r.db.GetItem(ctx, r.tableName(), "id", id, req); err != nil {
		r.logger.Errorf("Failed to get service request %s: %v", id, err)
		return nil, err
	}
	if req.ID == "" {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// GetByRequestID resolves the human-readable SR-YYYYMM-#### id through the
// request_id-index GSI.
func (r *ServiceRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	var requests []*models.ServiceRequest
	if err := r.db.QueryByIndex(ctx, r.tableName(), "request_id-index", "request_id", requestID, &requests); err != nil {
		r.logger.Errorf("Failed to query service request %s: %v", requestID, err)
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrRequestNotFound
	}
	return requests[0], nil
}

func (r *ServiceRequestRepository) ListAll(ctx context.Context) ([]*models.ServiceRequest, error) {
	var requests []*models.ServiceRequest
	if err := r.db.Scan(ctx, r.tableName(), &requests); err != nil {
		r.logger.Errorf("Failed to scan service requests: %v", err)
		return nil, err
	}
	return requests, nil
}

func (r *ServiceRequestRepository) ListByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error) {
	var requests []*models.ServiceRequest
	if err := r.db.QueryByIndex(ctx, r.tableName(), "client_id-index", "client_id", clientID, &requests); err != nil {
		r.logger.Errorf("Failed to query service requests for client %s: %v", clientID, err)
		return nil, err
	}
	return requests, nil
}

// Save persists a full document under the optimistic concurrency token. The
// caller's in-memory version is bumped on success; a concurrent writer losing
// the race gets dal.ErrVersionConflict instead of silently overwriting.
func (r *ServiceRequestRepository) Save(ctx context.Context, req *models.ServiceRequest) error {
	expected := req.Version
	req.Version = expected + 1
	req.UpdatedAt = time.Now()

	if err := r.db.PutItemVersioned(ctx, r.tableName(), req, expected); err != nil {
		req.Version = expected
		if errors.Is(err, dal.ErrVersionConflict) {
			r.logger.Warnf("Concurrent modification of service request %s detected", req.ID)
		} else {
			r.logger.Errorf("Failed to save service request %s: %v", req.ID, err)
		}
		return err
	}
	return nil
}
