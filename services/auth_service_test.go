package services

import (
	"context"
	"errors"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"moldcare-backend/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockOTPRepository implements OTPRepositoryInterface for testing
type MockOTPRepository struct {
	mock.Mock
}

func (m *MockOTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *MockOTPRepository) GetLatest(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTP, error) {
	args := m.Called(ctx, email, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OTP), args.Error(1)
}

func (m *MockOTPRepository) Update(ctx context.Context, otp *models.OTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteUnused(ctx context.Context, email string, purpose models.OTPPurpose) error {
	args := m.Called(ctx, email, purpose)
	return args.Error(0)
}

func (m *MockOTPRepository) DeleteAll(ctx context.Context, email string, purpose models.OTPPurpose) error {
	args := m.Called(ctx, email, purpose)
	return args.Error(0)
}

// MockMailer implements the MailSender interface for testing
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOTP(to, code string, purpose models.OTPPurpose) error {
	args := m.Called(to, code, purpose)
	return args.Error(0)
}

// AuthServiceTestSuite defines a test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	mockUserRepo *MockUserRepository
	mockOTPRepo  *MockOTPRepository
	mockMailer   *MockMailer
	mockLogger   *MockLogger
	authService  *AuthService
}

// SetupTest runs before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockUserRepo = &MockUserRepository{}
	suite.mockOTPRepo = &MockOTPRepository{}
	suite.mockMailer = &MockMailer{}
	suite.mockLogger = &MockLogger{}

	// Mock logger calls that might be made
	suite.mockLogger.On("Debug", mock.Anything).Return().Maybe()
	suite.mockLogger.On("Debugf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	suite.mockLogger.On("Info", mock.Anything).Return().Maybe()
	suite.mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	suite.mockLogger.On("Error", mock.Anything).Return().Maybe()
	suite.mockLogger.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	suite.mockLogger.On("Warn", mock.Anything).Return().Maybe()
	suite.mockLogger.On("Warnf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()

	cfg := &models.Config{OTPExpiryMinutes: 15, OTPMaxAttempts: 3}
	suite.authService = NewAuthService(suite.mockUserRepo, suite.mockOTPRepo, suite.mockMailer, cfg, suite.mockLogger)
}

// TearDownTest runs after each test
func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockOTPRepo.AssertExpectations(suite.T())
	suite.mockMailer.AssertExpectations(suite.T())
}

// storedUser returns an active account with the given password hashed
func (suite *AuthServiceTestSuite) storedUser(password string) *models.User {
	hash, err := utils.HashPassword(password)
	assert.NoError(suite.T(), err)
	return &models.User{
		ID:           "user-1",
		Email:        "cleo@acme.com",
		PasswordHash: hash,
		Name:         "Cleo Client",
		Role:         models.UserRoleClient,
		IsActive:     true,
	}
}

// freshOTP returns an unexpired, unused reset code
func freshOTP(code string) *models.OTP {
	now := time.Now()
	return &models.OTP{
		ID:        "otp-1",
		Email:     "cleo@acme.com",
		Code:      code,
		Purpose:   models.OTPPurposePasswordReset,
		ExpiresAt: now.Add(15 * time.Minute),
		CreatedAt: now,
	}
}

func (suite *AuthServiceTestSuite) TestSignupNormalizesEmailAndDefaultsClientRole() {
	suite.mockUserRepo.On("CreateUser", suite.ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "cleo@acme.com" &&
			u.Role == models.UserRoleClient &&
			u.PasswordHash != "" &&
			u.PasswordHash != "secret-pass-123" &&
			utils.CheckPassword(u.PasswordHash, "secret-pass-123")
	})).Return(func(ctx context.Context, u *models.User) *models.User { return u }, nil)

	result, err := suite.authService.Signup(suite.ctx, &models.SignupRequest{
		Email:    "  Cleo@Acme.Com ",
		Password: "secret-pass-123",
		Name:     " Cleo Client ",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "cleo@acme.com", result.Email)
	assert.Equal(suite.T(), "Cleo Client", result.Name)
}

func (suite *AuthServiceTestSuite) TestSignupDuplicateEmail() {
	suite.mockUserRepo.On("CreateUser", suite.ctx, mock.AnythingOfType("*models.User")).
		Return(nil, errors.New("user with email cleo@acme.com already exists"))

	_, err := suite.authService.Signup(suite.ctx, &models.SignupRequest{
		Email:    "cleo@acme.com",
		Password: "secret-pass-123",
		Name:     "Cleo Client",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
	assert.Equal(suite.T(), "An account with this email already exists", MessageOf(err))
}

func (suite *AuthServiceTestSuite) TestLoginSuccessStampsLastLogin() {
	user := suite.storedUser("secret-pass-123")
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)
	suite.mockUserRepo.On("UpdateUser", suite.ctx, "user-1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, ok := updates["last_login_at"]
		return ok && len(updates) == 1
	})).Return(nil)

	result, err := suite.authService.Login(suite.ctx, &models.LoginRequest{
		Email:    " Cleo@Acme.Com ",
		Password: "secret-pass-123",
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result.LastLoginAt)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	user := suite.storedUser("secret-pass-123")
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)

	_, err := suite.authService.Login(suite.ctx, &models.LoginRequest{
		Email:    "cleo@acme.com",
		Password: "wrong-password",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 401, StatusOf(err))
	assert.Equal(suite.T(), "Invalid email or password", MessageOf(err))
}

func (suite *AuthServiceTestSuite) TestLoginUnknownEmailSameMessage() {
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "ghost@acme.com").Return(nil, repository.ErrUserNotFound)

	_, err := suite.authService.Login(suite.ctx, &models.LoginRequest{
		Email:    "ghost@acme.com",
		Password: "whatever-pass",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 401, StatusOf(err))
	// indistinguishable from a wrong password
	assert.Equal(suite.T(), "Invalid email or password", MessageOf(err))
}

func (suite *AuthServiceTestSuite) TestLoginDeactivatedAccount() {
	user := suite.storedUser("secret-pass-123")
	user.IsActive = false
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)

	_, err := suite.authService.Login(suite.ctx, &models.LoginRequest{
		Email:    "cleo@acme.com",
		Password: "secret-pass-123",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 403, StatusOf(err))
}

func (suite *AuthServiceTestSuite) TestChangePasswordWrongCurrent() {
	user := suite.storedUser("secret-pass-123")
	suite.mockUserRepo.On("GetUserByID", suite.ctx, "user-1").Return(user, nil)

	err := suite.authService.ChangePassword(suite.ctx, "user-1", &models.ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "new-pass-45678",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 401, StatusOf(err))
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser")
}

func (suite *AuthServiceTestSuite) TestRequestPasswordResetUnknownEmail() {
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "ghost@acme.com").Return(nil, repository.ErrUserNotFound)

	err := suite.authService.RequestPasswordReset(suite.ctx, "ghost@acme.com")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 404, StatusOf(err))
	suite.mockOTPRepo.AssertNotCalled(suite.T(), "Create")
	suite.mockMailer.AssertNotCalled(suite.T(), "SendOTP")
}

func (suite *AuthServiceTestSuite) TestRequestPasswordResetIssuesSixDigitCode() {
	user := suite.storedUser("secret-pass-123")
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)
	suite.mockOTPRepo.On("DeleteUnused", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(nil)

	var issued string
	suite.mockOTPRepo.On("Create", suite.ctx, mock.MatchedBy(func(otp *models.OTP) bool {
		if len(otp.Code) != 6 {
			return false
		}
		for _, r := range otp.Code {
			if r < '0' || r > '9' {
				return false
			}
		}
		issued = otp.Code
		return otp.Email == "cleo@acme.com" &&
			!otp.IsUsed &&
			otp.Attempts == 0 &&
			otp.ExpiresAt.After(time.Now().Add(14*time.Minute))
	})).Return(nil)
	suite.mockMailer.On("SendOTP", "cleo@acme.com", mock.AnythingOfType("string"), models.OTPPurposePasswordReset).Return(nil)

	err := suite.authService.RequestPasswordReset(suite.ctx, " Cleo@Acme.Com ")

	assert.NoError(suite.T(), err)
	suite.mockMailer.AssertCalled(suite.T(), "SendOTP", "cleo@acme.com", issued, models.OTPPurposePasswordReset)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordResetMailFailureKeepsRecord() {
	user := suite.storedUser("secret-pass-123")
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)
	suite.mockOTPRepo.On("DeleteUnused", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(nil)
	suite.mockOTPRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.OTP")).Return(nil)
	suite.mockMailer.On("SendOTP", "cleo@acme.com", mock.AnythingOfType("string"), models.OTPPurposePasswordReset).
		Return(errors.New("smtp connect: connection refused"))

	err := suite.authService.RequestPasswordReset(suite.ctx, "cleo@acme.com")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 500, StatusOf(err))
	// the stored code is left for TTL expiry, not rolled back
	suite.mockOTPRepo.AssertCalled(suite.T(), "Create", suite.ctx, mock.AnythingOfType("*models.OTP"))
	suite.mockOTPRepo.AssertNotCalled(suite.T(), "DeleteAll")
}

func (suite *AuthServiceTestSuite) TestVerifyOTPDoesNotConsume() {
	otp := freshOTP("123456")
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), otp.IsUsed)
	assert.Equal(suite.T(), 1, otp.Attempts)

	// verifying again still succeeds; the code is only consumed by the reset
	err = suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, otp.Attempts)
}

func (suite *AuthServiceTestSuite) TestVerifyOTPWrongCodeBurnsAttempt() {
	otp := freshOTP("123456")
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "654321")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "Invalid verification code", MessageOf(err))
	assert.Equal(suite.T(), 1, otp.Attempts)
}

func (suite *AuthServiceTestSuite) TestVerifyOTPExpired() {
	otp := freshOTP("123456")
	otp.ExpiresAt = time.Now().Add(-time.Minute)
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "This code has expired; request a new one", MessageOf(err))
}

func (suite *AuthServiceTestSuite) TestVerifyOTPAlreadyUsed() {
	otp := freshOTP("123456")
	otp.IsUsed = true
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "This code has already been used", MessageOf(err))
}

func (suite *AuthServiceTestSuite) TestVerifyOTPAttemptBudgetExhausted() {
	// two attempts already burned; the third strikes out even with the
	// correct code
	otp := freshOTP("123456")
	otp.Attempts = 2
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "Too many attempts; request a new code", MessageOf(err))
	assert.Equal(suite.T(), 3, otp.Attempts)
}

func (suite *AuthServiceTestSuite) TestVerifyOTPHonoursConfiguredBudget() {
	// a wider configured budget keeps codes alive beyond the built-in default
	cfg := &models.Config{OTPExpiryMinutes: 15, OTPMaxAttempts: 5}
	service := NewAuthService(suite.mockUserRepo, suite.mockOTPRepo, suite.mockMailer, cfg, suite.mockLogger)

	otp := freshOTP("123456")
	otp.Attempts = 3
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := service.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, otp.Attempts)

	err = service.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), "Too many attempts; request a new code", MessageOf(err))
	assert.Equal(suite.T(), 5, otp.Attempts)
}

func (suite *AuthServiceTestSuite) TestVerifyOTPNoneIssued() {
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(nil, repository.ErrOTPNotFound)

	err := suite.authService.VerifyOTP(suite.ctx, "cleo@acme.com", "123456")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 404, StatusOf(err))
}

func (suite *AuthServiceTestSuite) TestResetPasswordRotatesAndConsumes() {
	otp := freshOTP("123456")
	user := suite.storedUser("old-pass-12345")

	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)
	suite.mockUserRepo.On("GetUserByEmail", suite.ctx, "cleo@acme.com").Return(user, nil)
	suite.mockUserRepo.On("UpdateUser", suite.ctx, "user-1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		return ok && utils.CheckPassword(hash, "new-pass-45678")
	})).Return(nil)
	suite.mockOTPRepo.On("DeleteAll", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(nil)

	err := suite.authService.ResetPassword(suite.ctx, "cleo@acme.com", "123456", "new-pass-45678")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), otp.IsUsed)
}

func (suite *AuthServiceTestSuite) TestResetPasswordInvalidCode() {
	otp := freshOTP("123456")
	suite.mockOTPRepo.On("GetLatest", suite.ctx, "cleo@acme.com", models.OTPPurposePasswordReset).Return(otp, nil)
	suite.mockOTPRepo.On("Update", suite.ctx, otp).Return(nil)

	err := suite.authService.ResetPassword(suite.ctx, "cleo@acme.com", "000000", "new-pass-45678")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser")
	suite.mockOTPRepo.AssertNotCalled(suite.T(), "DeleteAll")
}

// TestAuthServiceTestSuite runs the test suite
func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
