package middelware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"moldcare-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// CORSMiddlewareTestSuite defines a test suite for the CORS middleware
type CORSMiddlewareTestSuite struct {
	suite.Suite
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *CORSMiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &models.Config{
		CORSOrigins: []string{"https://app.moldcare.io", "*.moldcare.io"},
	}
	cors := NewCORSMiddleware(cfg)

	suite.router = gin.New()
	suite.router.Use(cors.CORS())
	suite.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func (suite *CORSMiddlewareTestSuite) TestAllowedOriginIsEchoed() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://app.moldcare.io")

	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "https://app.moldcare.io", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(suite.T(), "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func (suite *CORSMiddlewareTestSuite) TestWildcardSubdomainMatches() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://staging.moldcare.io")

	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "https://staging.moldcare.io", w.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *CORSMiddlewareTestSuite) TestDisallowedOriginGetsNoAllowHeader() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	suite.router.ServeHTTP(w, req)

	// the request still goes through, but the browser gets no CORS grant
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), w.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *CORSMiddlewareTestSuite) TestPreflightShortCircuits() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "https://app.moldcare.io")

	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), w.Body.String())
	assert.Contains(suite.T(), w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

// TestCORSMiddlewareTestSuite runs the test suite
func TestCORSMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(CORSMiddlewareTestSuite))
}

func TestRecoveryConvertsPanicToInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockLogger := &MockLogger{}
	mockLogger.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return()

	logging := NewLoggingMiddleware(mockLogger)
	r := gin.New()
	r.Use(logging.Recovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("unexpected state")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
	mockLogger.AssertExpectations(t)
}
