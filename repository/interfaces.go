package repository

import (
	"context"
	"moldcare-backend/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error
}

// ServiceRequestRepositoryInterface defines the contract for service request persistence
type ServiceRequestRepositoryInterface interface {
	Create(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error)
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	GetByRequestID(ctx context.Context, requestID string) (*models.ServiceRequest, error)
	ListAll(ctx context.Context) ([]*models.ServiceRequest, error)
	ListByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error)
	Save(ctx context.Context, req *models.ServiceRequest) error
}

// OTPRepositoryInterface defines the contract for OTP record operations
type OTPRepositoryInterface interface {
	Create(ctx context.Context, otp *models.OTP) error
	GetLatest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTP, error)
	Update(ctx context.Context, otp *models.OTP) error
	DeleteUnused(ctx context.Context, email string, purpose models.OTPPurpose) error
	DeleteAll(ctx context.Context, email string, purpose models.OTPPurpose) error
}
