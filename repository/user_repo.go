package repository

import (
	"context"
	"errors"
	"moldcare-backend/dal"
	"moldcare-backend/models"
	"time"

	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"
)

// ErrUserNotFound is returned when no user matches the lookup key
var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *UserRepository) tableName() string {
	return r.config.DynamoDBTablePrefix + "_users"
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	existing, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("user with this email already exists")
	}

	now := time.Now()
	user.ID = utils.GenerateUUID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	if user.Role == "" {
		user.Role = models.UserRoleClient
	}

	if err := r.db.PutItem(ctx, r.tableName(), user); err != nil {
		r.logger.Errorf("Failed to create user: %v", err)
		return nil, err
	}

	r.logger.Infof("User created successfully: %s", user.ID)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	if err := r.db.GetItem(ctx, r.tableName(), "id", id, user); err != nil {
		r.logger.Errorf("Failed to get user %s: %v", id, err)
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []*models.User
	if err := r.db.QueryByIndex(ctx, r.tableName(), "email-index", "email", email, &users); err != nil {
		r.logger.Errorf("Failed to query user by email: %v", err)
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	if err := r.db.UpdateItem(ctx, r.tableName(), "id", id, updates); err != nil {
		r.logger.Errorf("Failed to update user %s: %v", id, err)
		return err
	}
	return nil
}
