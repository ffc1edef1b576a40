package controller

import (
	"context"
	"errors"
	"net/http"

	"moldcare-backend/dal"
	"moldcare-backend/middelware"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"moldcare-backend/services"
	"moldcare-backend/utils/logger"
	"moldcare-backend/utils/swagger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	Auth    *AuthController
	Request *ServiceRequestController
	Process *ProcessController
	Report  *ReportController

	jwtManager *middelware.JWTManager
}

func NewController(ctx context.Context, cfg *models.Config, log logger.Logger) *Controller {
	dbclient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize DynamoDB client: %v", err)
	}

	userRepo := repository.NewUserRepository(dbclient, cfg, log)
	requestRepo := repository.NewServiceRequestRepository(dbclient, cfg, log)
	otpRepo := repository.NewOTPRepository(dbclient, cfg, log)

	jwtManager := middelware.NewJWTManager(cfg, log, userRepo)
	mailer := services.NewSMTPMailer(cfg, log)

	authService := services.NewAuthService(userRepo, otpRepo, mailer, cfg, log)
	requestService := services.NewServiceRequestService(requestRepo, userRepo, cfg, log)
	reportService := services.NewReportService(requestRepo, cfg, log)
	uploadService := services.NewUploadService(cfg, log)

	return &Controller{
		Auth:       NewAuthController(ctx, authService, jwtManager, log),
		Request:    NewServiceRequestController(ctx, requestService, uploadService, log),
		Process:    NewProcessController(ctx, requestService, reportService, log),
		Report:     NewReportController(ctx, reportService, log),
		jwtManager: jwtManager,
	}
}

func (c *Controller) RegisterRoutes(ctx context.Context, config *models.Config, r *gin.Engine, basePath string) error {
	log := logger.NewLogger(config.LogLevel, config.LogFormat)
	c.setupRoutes(config, r, basePath, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:    config.AppHost + ":" + config.AppPort,
		Handler: r,
	}
	log.Infof("Starting server on %s:%s", config.AppHost, config.AppPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// setupRoutes attaches the middleware chain and every route to the engine
func (c *Controller) setupRoutes(config *models.Config, r *gin.Engine, basePath string, log logger.Logger) {
	logging := middelware.NewLoggingMiddleware(log)
	cors := middelware.NewCORSMiddleware(config)
	r.Use(logging.Recovery(), logging.RequestLogger(), cors.CORS())

	v1 := r.Group(basePath)
	v1.Use(logging.StructuredLogger())

	// Health check endpoint (no auth required)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"service": "MoldCare Backend",
		})
	})

	// Swagger UI with authentication form
	swaggerConfig := swagger.SwaggerConfig{
		Title:         "MoldCare Backend API",
		SwaggerDocURL: "/swagger/doc.json",
		AuthURL:       basePath + "/auth/login",
	}
	r.GET("/swagger", swagger.ServeSwagger(swaggerConfig))
	r.GET("/swagger/", swagger.ServeSwagger(swaggerConfig))
	r.GET("/swagger/index.html", swagger.ServeSwagger(swaggerConfig))
	r.GET("/swagger/doc.json", swagger.ServeSwaggerDoc())

	auth := c.jwtManager.AuthMiddleware()
	admin := c.jwtManager.RequireAdmin()

	// Auth and profile routes
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", c.Auth.Signup)
	authGroup.POST("/login", c.Auth.Login)
	authGroup.GET("/me", auth, c.Auth.Me)
	authGroup.PUT("/profile", auth, c.Auth.UpdateProfile)
	authGroup.PUT("/change-password", auth, c.Auth.ChangePassword)
	authGroup.POST("/forgot-password", c.Auth.ForgotPassword)
	authGroup.POST("/verify-otp", c.Auth.VerifyOTP)
	authGroup.POST("/reset-password", c.Auth.ResetPassword)

	// Service request lifecycle
	requests := v1.Group("/service-requests", auth)
	requests.POST("", c.Request.Create)
	requests.GET("", c.Request.List)
	requests.GET("/stats", admin, c.Request.Stats)
	requests.GET("/:id", c.Request.Get)
	requests.PUT("/:id/status", admin, c.Request.UpdateStatus)
	requests.PUT("/bulk/status", admin, c.Request.BulkUpdateStatus)
	requests.POST("/:id/notes", c.Request.AddNote)
	requests.POST("/:id/attachments", c.Request.UploadAttachments)
	requests.PUT("/:id/assign", admin, c.Request.Assign)
	requests.PUT("/:id/archive", admin, c.Request.Archive)
	requests.DELETE("/:id", admin, c.Request.Delete)

	// Process tracking
	process := v1.Group("/process-tracking", auth)
	process.PUT("/:id/steps/:n/complete", admin, c.Process.CompleteStep)
	process.PUT("/:id/steps/:n/uncomplete", admin, c.Process.UncompleteStep)
	process.POST("/:id/steps/:n/comments", admin, c.Process.AddStepComment)
	process.GET("/:id/generate-pdf", c.Process.GeneratePDF)

	// Reports
	reports := v1.Group("/reports", auth)
	reports.POST("/generate/:id", admin, c.Report.Finalize)
	reports.GET("/preview/:id", c.Report.Preview)
	reports.GET("/export/csv", admin, c.Report.ExportCSV)
	reports.GET("/client/:clientId", c.Report.ClientReports)
}

// respondError maps a service error to the response envelope. Underlying
// errors are only exposed on 500s.
func respondError(c *gin.Context, err error) {
	status := services.StatusOf(err)
	resp := models.APIResponse{
		Success: false,
		Message: services.MessageOf(err),
	}
	if status == http.StatusInternalServerError {
		var svcErr *services.ServiceError
		if errors.As(err, &svcErr) && svcErr.Err != nil {
			resp.Error = svcErr.Err.Error()
		}
	}
	c.JSON(status, resp)
}

// respondBindingError renders request body binding failures with field-level
// details when the validator produced them.
func respondBindingError(c *gin.Context, err error) {
	resp := models.APIResponse{
		Success: false,
		Message: "Invalid request",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			resp.Errors = append(resp.Errors, models.FieldError{
				Field:   fe.Field(),
				Message: bindingMessage(fe),
			})
		}
	} else {
		resp.Error = err.Error()
	}

	c.JSON(http.StatusBadRequest, resp)
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "oneof":
		return "Value must be one of: " + fe.Param()
	default:
		return "Invalid value"
	}
}
