package services

import (
	"fmt"
	"mime/multipart"
	"moldcare-backend/models"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// UploadServiceTestSuite defines a test suite for UploadService validation
type UploadServiceTestSuite struct {
	suite.Suite
	mockLogger    *MockLogger
	uploadService *UploadService
}

// SetupTest runs before each test
func (suite *UploadServiceTestSuite) SetupTest() {
	suite.mockLogger = &MockLogger{}
	suite.mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	suite.mockLogger.On("Warnf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()

	cfg := &models.Config{
		UploadDir:       suite.T().TempDir(),
		MaxUploadSizeMB: 10,
		MaxUploadFiles:  5,
	}
	suite.uploadService = NewUploadService(cfg, suite.mockLogger)
}

// header fabricates a multipart file header without a real request
func header(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: name,
		Header:   h,
		Size:     size,
	}
}

func (suite *UploadServiceTestSuite) TestValidateFilesAccepts() {
	files := []*multipart.FileHeader{
		header("press-photo.jpg", "image/jpeg", 2*1024*1024),
		header("wear report.pdf", "application/pdf", 500*1024),
		header("measurements.csv", "text/csv", 12*1024),
	}

	assert.NoError(suite.T(), suite.uploadService.ValidateFiles(files))
}

func (suite *UploadServiceTestSuite) TestValidateFilesRejectsEmpty() {
	err := suite.uploadService.ValidateFiles(nil)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
}

func (suite *UploadServiceTestSuite) TestValidateFilesRejectsTooMany() {
	files := make([]*multipart.FileHeader, 6)
	for i := range files {
		files[i] = header(fmt.Sprintf("photo-%d.png", i), "image/png", 1024)
	}

	err := suite.uploadService.ValidateFiles(files)

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), MessageOf(err), "At most 5 files")
}

func (suite *UploadServiceTestSuite) TestValidateFilesRejectsOversized() {
	files := []*multipart.FileHeader{header("dump.pdf", "application/pdf", 11*1024*1024)}

	err := suite.uploadService.ValidateFiles(files)

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), MessageOf(err), "10MB limit")
}

func (suite *UploadServiceTestSuite) TestValidateFilesRejectsExtension() {
	files := []*multipart.FileHeader{header("payload.exe", "application/octet-stream", 1024)}

	err := suite.uploadService.ValidateFiles(files)

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), MessageOf(err), ".exe")
}

func (suite *UploadServiceTestSuite) TestValidateFilesRejectsMimeType() {
	// the extension passes but the declared content type does not
	files := []*multipart.FileHeader{header("notes.txt", "application/x-msdownload", 1024)}

	err := suite.uploadService.ValidateFiles(files)

	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 400, StatusOf(err))
}

func (suite *UploadServiceTestSuite) TestGenerateStoredFileName() {
	now := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	name := GenerateStoredFileName("Wear Report (final).PDF", now)

	assert.True(suite.T(), strings.HasPrefix(name, "Wear_Report__final_-"))
	assert.True(suite.T(), strings.HasSuffix(name, ".pdf"))
	assert.Contains(suite.T(), name, fmt.Sprintf("%d", now.UnixMilli()))
}

func (suite *UploadServiceTestSuite) TestGenerateStoredFileNameEmptyBase() {
	name := GenerateStoredFileName(".gitignore", time.Now())

	assert.True(suite.T(), strings.HasPrefix(name, "file-"))
}

// TestUploadServiceTestSuite runs the test suite
func TestUploadServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UploadServiceTestSuite))
}
