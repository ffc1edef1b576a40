package repository

import (
	"context"
	"errors"
	"moldcare-backend/dal"
	"moldcare-backend/models"

	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"
)

// ErrOTPNotFound is returned when no matching OTP record exists
var ErrOTPNotFound = errors.New("otp not found")

type OTPRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *OTPRepository {
	return &OTPRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

func (r *OTPRepository) tableName() string {
	return r.config.DynamoDBTablePrefix + "_otps"
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	if otp.ID == "" {
		otp.ID = utils.GenerateUUID()
	}
	// TTL attribute drives DynamoDB's store-level expiry, independent of
	// the application validity predicate
	otp.TTL = otp.ExpiresAt.Unix()

	if err := r.db.PutItem(ctx, r.tableName(), otp); err != nil {
		r.logger.Errorf("Failed to create OTP record: %v", err)
		return err
	}
	return nil
}

func (r *OTPRepository) byEmail(ctx context.Context, email string, purpose models.OTPPurpose) ([]*models.OTP, error) {
	var all []*models.OTP
	if err := r.db.QueryByIndex(ctx, r.tableName(), "email-index", "email", email, &all); err != nil {
		r.logger.Errorf("Failed to query OTPs for %s: %v", email, err)
		return nil, err
	}
	matched := make([]*models.OTP, 0, len(all))
	for _, o := range all {
		if o.Purpose == purpose {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

// GetLatest returns the most recently created OTP for email+purpose
func (r *OTPRepository) GetLatest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTP, error) {
	otps, err := r.byEmail(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if len(otps) == 0 {
		return nil, ErrOTPNotFound
	}

	latest := otps[0]
	for _, o := range otps[1:] {
		if o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	return latest, nil
}

func (r *OTPRepository) Update(ctx context.Context, otp *models.OTP) error {
	if err := r.db.PutItem(ctx, r.tableName(), otp); err != nil {
		r.logger.Errorf("Failed to update OTP record %s: %v", otp.ID, err)
		return err
	}
	return nil
}

// DeleteUnused removes not-yet-consumed OTPs for email+purpose
func (r *OTPRepository) DeleteUnused(ctx context.Context, email string, purpose models.OTPPurpose) error {
	otps, err := r.byEmail(ctx, email, purpose)
	if err != nil {
		return err
	}
	for _, o := range otps {
		if o.IsUsed {
			continue
		}
		if err := r.db.DeleteItem(ctx, r.tableName(), "id", o.ID); err != nil {
			r.logger.Errorf("Failed to delete OTP %s: %v", o.ID, err)
			return err
		}
	}
	return nil
}

// DeleteAll removes every OTP for email+purpose, used or not
func (r *OTPRepository) DeleteAll(ctx context.Context, email string, purpose models.OTPPurpose) error {
	otps, err := r.byEmail(ctx, email, purpose)
	if err != nil {
		return err
	}
	for _, o := range otps {
		if err := r.db.DeleteItem(ctx, r.tableName(), "id", o.ID); err != nil {
			r.logger.Errorf("Failed to delete OTP %s: %v", o.ID, err)
			return err
		}
	}
	return nil
}
