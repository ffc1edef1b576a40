package services

import (
	"context"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockLogger implements the logger interface for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Info(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Error(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Fatal(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Fatalf(format string, args ...interface{}) {
	m.Called(format, args)
}

// MockServiceRequestRepository implements ServiceRequestRepositoryInterface for testing
type MockServiceRequestRepository struct {
	mock.Mock
}

func (m *MockServiceRequestRepository) Create(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *models.ServiceRequest) *models.ServiceRequest); ok {
		return fn(ctx, req), args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) ListAll(ctx context.Context) ([]*models.ServiceRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) ListByClient(ctx context.Context, clientID string) ([]*models.ServiceRequest, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ServiceRequest), args.Error(1)
}

func (m *MockServiceRequestRepository) Save(ctx context.Context, req *models.ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockUserRepository implements UserRepositoryInterface for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *models.User) *models.User); ok {
		return fn(ctx, user), args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

// ServiceRequestServiceTestSuite defines a test suite for ServiceRequestService
type ServiceRequestServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	mockRepo     *MockServiceRequestRepository
	mockUserRepo *MockUserRepository
	mockLogger   *MockLogger
	service      *ServiceRequestService
	admin        *models.User
	client       *models.User
}

// SetupTest runs before each test
func (suite *ServiceRequestServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = &MockServiceRequestRepository{}
	suite.mockUserRepo = &MockUserRepository{}
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

	cfg := &models.Config{DefaultSLATargetHours: 72}
	suite.service = NewServiceRequestService(suite.mockRepo, suite.mockUserRepo, cfg, suite.mockLogger)

	suite.admin = &models.User{ID: "admin-1", Name: "Ada Admin", Email: "ada@moldcare.io", Role: models.UserRoleAdmin, IsActive: true}
	suite.client = &models.User{ID: "client-1", Name: "Cleo Client", Email: "cleo@acme.com", Company: "Acme Moulding", Role: models.UserRoleClient, IsActive: true}
}

// TearDownTest runs after each test
func (suite *ServiceRequestServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// seedRequest builds a stored request owned by the suite's client
func (suite *ServiceRequestServiceTestSuite) seedRequest(receivedAgo time.Duration) *models.ServiceRequest {
	received := time.Now().Add(-receivedAgo)
	sr := &models.ServiceRequest{
		ID:                 "sr-1",
		RequestID:          "SR-202608-0001",
		ClientID:           suite.client.ID,
		ClientName:         suite.client.Name,
		ServiceType:        "screw_barrel_repair",
		ProblemDescription: "Barrel wear beyond tolerance",
		Priority:           models.PriorityMedium,
		CurrentStatus:      models.RequestStatusReceived,
		ReceivedAt:         received,
		SLATargetHours:     72,
		StatusHistory: []models.StatusHistoryEntry{{
			Status:     models.RequestStatusReceived,
			ChangedBy:  suite.client.ID,
			ChangedAt:  received,
			DurationMs: 0,
		}},
	}
	for i := 0; i < models.ProcessStepCount; i++ {
		sr.ProcessSteps[i] = models.ProcessStep{Name: models.ProcessStepNames[i], Comments: []models.StepComment{}}
	}
	return sr
}

func (suite *ServiceRequestServiceTestSuite) TestCreateSeedsStepsAndHistory() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.ServiceRequest")).
		Return(func(ctx context.Context, sr *models.ServiceRequest) *models.ServiceRequest { return sr }, nil)

	result, err := suite.service.Create(suite.ctx, suite.client, &models.CreateServiceRequest{
		ServiceType:        "mold_modification",
		ProblemDescription: "Gate redesign for new resin",
		Priority:           models.PriorityHigh,
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.Equal(suite.T(), suite.client.ID, result.ClientID)
	assert.Equal(suite.T(), suite.client.Company, result.ClientCompany)
	assert.Equal(suite.T(), models.PriorityHigh, result.Priority)
	assert.Equal(suite.T(), models.RequestStatusReceived, result.CurrentStatus)
	assert.Equal(suite.T(), 72, result.SLATargetHours)

	// all 5 steps seeded incomplete, in order
	for i := 0; i < models.ProcessStepCount; i++ {
		assert.Equal(suite.T(), models.ProcessStepNames[i], result.ProcessSteps[i].Name)
		assert.False(suite.T(), result.ProcessSteps[i].Completed)
		assert.NotNil(suite.T(), result.ProcessSteps[i].Comments)
	}

	// the creation event is the first audit entry
	assert.Len(suite.T(), result.StatusHistory, 1)
	assert.Equal(suite.T(), models.RequestStatusReceived, result.StatusHistory[0].Status)
	assert.Equal(suite.T(), "Service request submitted", result.StatusHistory[0].Notes)
	assert.Equal(suite.T(), int64(0), result.StatusHistory[0].DurationMs)
}

func (suite *ServiceRequestServiceTestSuite) TestCreateDefaultsPriorityToMedium() {
	suite.mockRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.ServiceRequest")).
		Return(func(ctx context.Context, sr *models.ServiceRequest) *models.ServiceRequest { return sr }, nil)

	result, err := suite.service.Create(suite.ctx, suite.client, &models.CreateServiceRequest{
		ServiceType:        "maintenance",
		ProblemDescription: "Quarterly service",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PriorityMedium, result.Priority)
}

func (suite *ServiceRequestServiceTestSuite) TestCreateRequiresServiceType() {
	_, err := suite.service.Create(suite.ctx, suite.client, &models.CreateServiceRequest{
		ProblemDescription: "Something is broken",
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *ServiceRequestServiceTestSuite) TestGetEnforcesOwnership() {
	sr := suite.seedRequest(time.Hour)
	sr.ClientID = "someone-else"
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)

	_, err := suite.service.Get(suite.ctx, suite.client, "sr-1")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 403, StatusOf(err))
}

func (suite *ServiceRequestServiceTestSuite) TestGetAdminBypassesOwnership() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)

	result, err := suite.service.Get(suite.ctx, suite.admin, "sr-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), sr, result)
}

func (suite *ServiceRequestServiceTestSuite) TestGetHidesSoftDeleted() {
	sr := suite.seedRequest(time.Hour)
	sr.IsDeleted = true
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)

	_, err := suite.service.Get(suite.ctx, suite.admin, "sr-1")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 404, StatusOf(err))
}

func (suite *ServiceRequestServiceTestSuite) TestGetNotFound() {
	suite.mockRepo.On("GetByID", suite.ctx, "missing").Return(nil, repository.ErrRequestNotFound)

	_, err := suite.service.Get(suite.ctx, suite.admin, "missing")

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 404, StatusOf(err))
}

func (suite *ServiceRequestServiceTestSuite) TestUpdateStatusAppendsHistoryWithDuration() {
	sr := suite.seedRequest(2 * time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.UpdateStatus(suite.ctx, suite.admin, "sr-1", &models.UpdateStatusRequest{
		Status: models.RequestStatusInProgress,
		Notes:  "Technician dispatched",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestStatusInProgress, result.CurrentStatus)
	assert.NotNil(suite.T(), result.InProgressAt)

	assert.Len(suite.T(), result.StatusHistory, 2)
	entry := result.StatusHistory[1]
	assert.Equal(suite.T(), models.RequestStatusInProgress, entry.Status)
	assert.Equal(suite.T(), suite.admin.ID, entry.ChangedBy)
	assert.Equal(suite.T(), "Technician dispatched", entry.Notes)
	// elapsed since the previous history entry, in milliseconds
	assert.InDelta(suite.T(), (2 * time.Hour).Milliseconds(), entry.DurationMs, 5000)
}

func (suite *ServiceRequestServiceTestSuite) TestUpdateStatusCompletedStampsTotals() {
	sr := suite.seedRequest(48 * time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.UpdateStatus(suite.ctx, suite.admin, "sr-1", &models.UpdateStatusRequest{
		Status: models.RequestStatusCompleted,
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result.CompletedAt)
	assert.InDelta(suite.T(), 48.0, result.TotalDurationHours, 0.1)
}

func (suite *ServiceRequestServiceTestSuite) TestUpdateStatusRejectsUnknownStatus() {
	_, err := suite.service.UpdateStatus(suite.ctx, suite.admin, "sr-1", &models.UpdateStatusRequest{
		Status: models.RequestStatus("archived"),
	})

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID")
}

func (suite *ServiceRequestServiceTestSuite) TestCompleteStepDerivesStatusWithoutHistory() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.CompleteStep(suite.ctx, suite.admin, "sr-1", 2)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.ProcessSteps[1].Completed)
	assert.NotNil(suite.T(), result.ProcessSteps[1].CompletedAt)
	assert.Equal(suite.T(), suite.admin.ID, result.ProcessSteps[1].CompletedBy)

	// the derived status flips but neither the audit trail nor the
	// per-status timestamps move
	assert.Equal(suite.T(), models.RequestStatusInProgress, result.CurrentStatus)
	assert.Len(suite.T(), result.StatusHistory, 1)
	assert.Nil(suite.T(), result.InProgressAt)
}

func (suite *ServiceRequestServiceTestSuite) TestCompleteStepFiveDerivesCompleted() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.CompleteStep(suite.ctx, suite.admin, "sr-1", 5)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestStatusCompleted, result.CurrentStatus)
	assert.Nil(suite.T(), result.CompletedAt)
	assert.Zero(suite.T(), result.TotalDurationHours)
}

func (suite *ServiceRequestServiceTestSuite) TestCompleteStepRejectsOutOfRange() {
	for _, step := range []int{0, 6, -1} {
		_, err := suite.service.CompleteStep(suite.ctx, suite.admin, "sr-1", step)
		assert.Error(suite.T(), err)
		assert.Equal(suite.T(), 400, StatusOf(err))
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID")
}

func (suite *ServiceRequestServiceTestSuite) TestUncompleteStepRequiresCompleted() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)

	_, err := suite.service.UncompleteStep(suite.ctx, suite.admin, "sr-1", 3)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "Save")
}

func (suite *ServiceRequestServiceTestSuite) TestUncompleteStepClearsCompletionFields() {
	sr := suite.seedRequest(time.Hour)
	now := time.Now()
	sr.ProcessSteps[2].Completed = true
	sr.ProcessSteps[2].CompletedAt = &now
	sr.ProcessSteps[2].CompletedBy = suite.admin.ID
	sr.ProcessSteps[2].CompletedByName = suite.admin.Name
	sr.CurrentStatus = models.RequestStatusInProgress

	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.UncompleteStep(suite.ctx, suite.admin, "sr-1", 3)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.ProcessSteps[2].Completed)
	assert.Nil(suite.T(), result.ProcessSteps[2].CompletedAt)
	assert.Empty(suite.T(), result.ProcessSteps[2].CompletedBy)
	// reverting a step never touches the legacy status
	assert.Equal(suite.T(), models.RequestStatusInProgress, result.CurrentStatus)
}

func (suite *ServiceRequestServiceTestSuite) TestAddStepComment() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.AddStepComment(suite.ctx, suite.admin, "sr-1", 1, "  Crane booked for Tuesday  ")

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.ProcessSteps[0].Comments, 1)
	assert.Equal(suite.T(), "Crane booked for Tuesday", result.ProcessSteps[0].Comments[0].Content)
	assert.Equal(suite.T(), suite.admin.ID, result.ProcessSteps[0].Comments[0].AuthorID)
}

func (suite *ServiceRequestServiceTestSuite) TestProcessTrackingRejectsNonAdmin() {
	_, err := suite.service.AddStepComment(suite.ctx, suite.client, "sr-1", 2, "client wrote this")
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 403, StatusOf(err))

	_, err = suite.service.CompleteStep(suite.ctx, suite.client, "sr-1", 1)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 403, StatusOf(err))

	_, err = suite.service.UncompleteStep(suite.ctx, suite.client, "sr-1", 1)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 403, StatusOf(err))

	suite.mockRepo.AssertNotCalled(suite.T(), "GetByID")
	suite.mockRepo.AssertNotCalled(suite.T(), "Save")
}

func (suite *ServiceRequestServiceTestSuite) TestGetResolvesHumanReadableID() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "SR-202608-0001").Return(nil, repository.ErrRequestNotFound)
	suite.mockRepo.On("GetByRequestID", suite.ctx, "SR-202608-0001").Return(sr, nil)

	result, err := suite.service.Get(suite.ctx, suite.admin, "SR-202608-0001")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), sr, result)
}

func (suite *ServiceRequestServiceTestSuite) TestBulkUpdateStatusReportsPerItemResults() {
	good := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(good, nil)
	suite.mockRepo.On("GetByID", suite.ctx, "missing").Return(nil, repository.ErrRequestNotFound)
	suite.mockRepo.On("Save", suite.ctx, good).Return(nil)

	results := suite.service.BulkUpdateStatus(suite.ctx, suite.admin, &models.BulkStatusRequest{
		IDs:    []string{"sr-1", "missing"},
		Status: models.RequestStatusPending,
	})

	assert.Len(suite.T(), results, 2)
	assert.Equal(suite.T(), "sr-1", results[0].ID)
	assert.True(suite.T(), results[0].OK)
	assert.Empty(suite.T(), results[0].Error)
	assert.Equal(suite.T(), "missing", results[1].ID)
	assert.False(suite.T(), results[1].OK)
	assert.Equal(suite.T(), "Service request not found", results[1].Error)
}

func (suite *ServiceRequestServiceTestSuite) TestListClientOnlySeesOwnRequests() {
	mine := suite.seedRequest(time.Hour)
	suite.mockRepo.On("ListByClient", suite.ctx, suite.client.ID).Return([]*models.ServiceRequest{mine}, nil)

	items, pagination, err := suite.service.List(suite.ctx, suite.client, &models.ServiceRequestFilter{})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), 1, pagination.Total)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListAll")
}

func (suite *ServiceRequestServiceTestSuite) TestListExcludesSoftDeletedAndFilters() {
	a := suite.seedRequest(3 * time.Hour)
	a.ID = "sr-a"
	b := suite.seedRequest(2 * time.Hour)
	b.ID = "sr-b"
	b.CurrentStatus = models.RequestStatusInProgress
	deleted := suite.seedRequest(time.Hour)
	deleted.ID = "sr-c"
	deleted.IsDeleted = true

	suite.mockRepo.On("ListAll", suite.ctx).Return([]*models.ServiceRequest{a, b, deleted}, nil)

	items, pagination, err := suite.service.List(suite.ctx, suite.admin, &models.ServiceRequestFilter{
		Status: models.RequestStatusInProgress,
	})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), "sr-b", items[0].ID)
	assert.Equal(suite.T(), 1, pagination.Total)
}

func (suite *ServiceRequestServiceTestSuite) TestListClampsOversizedLimit() {
	all := make([]*models.ServiceRequest, 0, 15)
	for i := 0; i < 15; i++ {
		sr := suite.seedRequest(time.Duration(i+1) * time.Hour)
		sr.ID = string(rune('a' + i))
		all = append(all, sr)
	}
	suite.mockRepo.On("ListAll", suite.ctx).Return(all, nil)

	items, pagination, err := suite.service.List(suite.ctx, suite.admin, &models.ServiceRequestFilter{Limit: 500})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 10)
	assert.Equal(suite.T(), 10, pagination.Limit)
	assert.Equal(suite.T(), 15, pagination.Total)
	assert.Equal(suite.T(), 2, pagination.TotalPages)
	assert.True(suite.T(), pagination.HasNext)
	assert.False(suite.T(), pagination.HasPrevious)
}

func (suite *ServiceRequestServiceTestSuite) TestAssignStampsAssignee() {
	sr := suite.seedRequest(time.Hour)
	tech := &models.User{ID: "tech-1", Name: "Tess Tech", Role: models.UserRoleAdmin}
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockUserRepo.On("GetUserByID", suite.ctx, "tech-1").Return(tech, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	result, err := suite.service.Assign(suite.ctx, suite.admin, "sr-1", "tech-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "tech-1", result.AssignedTo)
	assert.Equal(suite.T(), "Tess Tech", result.AssignedToName)
	assert.NotNil(suite.T(), result.AssignedAt)
}

func (suite *ServiceRequestServiceTestSuite) TestSoftDeleteFlagsWithoutRemoval() {
	sr := suite.seedRequest(time.Hour)
	suite.mockRepo.On("GetByID", suite.ctx, "sr-1").Return(sr, nil)
	suite.mockRepo.On("Save", suite.ctx, sr).Return(nil)

	err := suite.service.SoftDelete(suite.ctx, suite.admin, "sr-1")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), sr.IsDeleted)
	assert.NotNil(suite.T(), sr.DeletedAt)
}

// TestServiceRequestServiceTestSuite runs the test suite
func TestServiceRequestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceRequestServiceTestSuite))
}
