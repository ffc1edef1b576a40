package services

import (
	"context"
	"errors"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"strings"
	"time"

	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"
)

// AuthService implements signup, login, profile maintenance and the
// OTP-driven password reset flow.
type AuthService struct {
	userRepo repository.UserRepositoryInterface
	otpRepo  repository.OTPRepositoryInterface
	mailer   MailSender
	config   *models.Config
	logger   logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepositoryInterface, otpRepo repository.OTPRepositoryInterface, mailer MailSender, cfg *models.Config, log logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		mailer:   mailer,
		config:   cfg,
		logger:   log,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, NewInternalError("Failed to hash password", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Company:      req.Company,
		Phone:        req.Phone,
		Role:         models.UserRoleClient,
	}

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, NewBusinessError("An account with this email already exists")
		}
		return nil, NewInternalError("Failed to create account", err)
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewAuthError("Invalid email or password")
		}
		return nil, NewInternalError("Failed to look up account", err)
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, NewAuthError("Invalid email or password")
	}
	if !user.IsActive {
		return nil, NewForbiddenError("Account is deactivated")
	}

	now := time.Now()
	if err := s.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		// login still succeeds; the timestamp is best-effort
		s.logger.Warnf("Failed to stamp last login for %s: %v", user.ID, err)
	}
	user.LastLoginAt = &now

	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, NewInternalError("Failed to load profile", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if strings.TrimSpace(req.Name) != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}
	if req.Company != "" {
		updates["company"] = req.Company
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) == 0 {
		return nil, NewValidationError("Nothing to update")
	}

	if err := s.userRepo.UpdateUser(ctx, userID, updates); err != nil {
		return nil, NewInternalError("Failed to update profile", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return NewNotFoundError("User not found")
		}
		return NewInternalError("Failed to load account", err)
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return NewAuthError("Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return NewInternalError("Failed to hash password", err)
	}

	if err := s.userRepo.UpdateUser(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return NewInternalError("Failed to update password", err)
	}
	return nil
}

// RequestPasswordReset is phase 1 of the OTP flow: drop stale unused codes,
// mint a fresh one and attempt delivery. The record is not rolled back when
// delivery fails; TTL expiry cleans it up.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.userRepo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return NewNotFoundError("No account found for this email")
		}
		return NewInternalError("Failed to look up account", err)
	}

	if err := s.otpRepo.DeleteUnused(ctx, email, models.OTPPurposePasswordReset); err != nil {
		return NewInternalError("Failed to clear previous codes", err)
	}

	code, err := utils.GenerateOTPCode()
	if err != nil {
		return NewInternalError("Failed to generate code", err)
	}

	now := time.Now()
	otp := &models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   models.OTPPurposePasswordReset,
		ExpiresAt: now.Add(time.Duration(s.config.OTPExpiryMinutes) * time.Minute),
		CreatedAt: now,
	}
	if err := s.otpRepo.Create(ctx, otp); err != nil {
		return NewInternalError("Failed to store verification code", err)
	}

	if err := s.mailer.SendOTP(email, code, models.OTPPurposePasswordReset); err != nil {
		return NewInternalError("Failed to send verification code", err)
	}

	s.logger.Infof("Password reset OTP issued for %s", email)
	return nil
}

// checkOTP increments the attempt counter unconditionally, then evaluates the
// validity predicate, returning the specific failing condition.
func (s *AuthService) checkOTP(ctx context.Context, email, code string) (*models.OTP, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	otp, err := s.otpRepo.GetLatest(ctx, email, models.OTPPurposePasswordReset)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, NewNotFoundError("No verification code found; request a new one")
		}
		return nil, NewInternalError("Failed to look up verification code", err)
	}

	otp.Attempts++
	if err := s.otpRepo.Update(ctx, otp); err != nil {
		return nil, NewInternalError("Failed to record verification attempt", err)
	}

	now := time.Now()
	if !otp.IsValid(now, s.maxOTPAttempts()) {
		switch {
		case otp.IsUsed:
			return nil, NewBusinessError("This code has already been used")
		case !otp.ExpiresAt.After(now):
			return nil, NewBusinessError("This code has expired; request a new one")
		default:
			return nil, NewBusinessError("Too many attempts; request a new code")
		}
	}
	if otp.Code != code {
		return nil, NewBusinessError("Invalid verification code")
	}

	return otp, nil
}

// maxOTPAttempts returns the configured attempt budget, falling back to the
// model default.
func (s *AuthService) maxOTPAttempts() int {
	if s.config.OTPMaxAttempts > 0 {
		return s.config.OTPMaxAttempts
	}
	return models.MaxOTPAttempts
}

// VerifyOTP is phase 2 of the OTP flow. It does not consume the code; the
// reset phase re-validates.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	_, err := s.checkOTP(ctx, email, code)
	return err
}

// ResetPassword is phase 3: re-validate the code, rotate the password, consume
// the code and purge all reset codes for the address.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	otp, err := s.checkOTP(ctx, email, code)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return NewNotFoundError("No account found for this email")
		}
		return NewInternalError("Failed to look up account", err)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return NewInternalError("Failed to hash password", err)
	}
	if err := s.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return NewInternalError("Failed to update password", err)
	}

	otp.IsUsed = true
	if err := s.otpRepo.Update(ctx, otp); err != nil {
		s.logger.Warnf("Failed to mark OTP %s used: %v", otp.ID, err)
	}
	if err := s.otpRepo.DeleteAll(ctx, email, models.OTPPurposePasswordReset); err != nil {
		s.logger.Warnf("Failed to purge reset codes for %s: %v", email, err)
	}

	s.logger.Infof("Password reset completed for %s", email)
	return nil
}
