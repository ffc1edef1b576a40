package controller

import (
	"context"
	"net/http"

	"moldcare-backend/middelware"
	"moldcare-backend/models"
	"moldcare-backend/services"
	"moldcare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	ctx         context.Context
	authService *services.AuthService
	jwtManager  *middelware.JWTManager
	logger      logger.Logger
}

func NewAuthController(ctx context.Context, authService *services.AuthService, jwtManager *middelware.JWTManager, log logger.Logger) *AuthController {
	return &AuthController{
		ctx:         ctx,
		authService: authService,
		jwtManager:  jwtManager,
		logger:      log,
	}
}

// Signup handles POST /api/v1/auth/signup
// @Summary Register a new client account
// @Description Create a new client account and return a JWT token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} models.APIResponse "Account created successfully"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid signup data"
// @Failure 500 {object} models.APIResponse "Internal Server Error"
// @Router /auth/signup [post]
func (h *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, services.NewInternalError("Token generation failed", err))
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "Account created successfully",
		Data:    gin.H{"token": token},
		User:    user.PublicProfile(),
	})
}

// Login handles POST /api/v1/auth/login
// @Summary Authenticate a user
// @Description Validate credentials and return a JWT token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.APIResponse "Login successful"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid login data"
// @Failure 401 {object} models.APIResponse "Unauthorized - Invalid credentials"
// @Router /auth/login [post]
func (h *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, services.NewInternalError("Token generation failed", err))
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Login successful",
		Data:    gin.H{"token": token},
		User:    user.PublicProfile(),
	})
}

// Me handles GET /api/v1/auth/me
// @Summary Get current user profile
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse "Profile retrieved"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /auth/me [get]
func (h *AuthController) Me(c *gin.Context) {
	user := middelware.CurrentUser(c)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		User:    user.PublicProfile(),
	})
}

// UpdateProfile handles PUT /api/v1/auth/profile
// @Summary Update current user profile
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.APIResponse "Profile updated"
// @Failure 400 {object} models.APIResponse "Bad Request"
// @Router /auth/profile [put]
func (h *AuthController) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	user := middelware.CurrentUser(c)
	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    updated.PublicProfile(),
	})
}

// ChangePassword handles PUT /api/v1/auth/change-password
// @Summary Change the current user's password
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Password change request"
// @Success 200 {object} models.APIResponse "Password changed"
// @Failure 400 {object} models.APIResponse "Bad Request - Wrong current password"
// @Router /auth/change-password [put]
func (h *AuthController) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	user := middelware.CurrentUser(c)
	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Password changed successfully",
	})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
// @Summary Request a password reset OTP
// @Description Send a 6-digit OTP to the account email
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account email"
// @Success 200 {object} models.APIResponse "OTP sent"
// @Failure 404 {object} models.APIResponse "Not Found - Unknown email"
// @Router /auth/forgot-password [post]
func (h *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "OTP sent to your email address",
	})
}

// VerifyOTP handles POST /api/v1/auth/verify-otp
// @Summary Verify a password reset OTP
// @Description Check an OTP without consuming it
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.VerifyOTPRequest true "Email and OTP code"
// @Success 200 {object} models.APIResponse "OTP verified"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid or expired OTP"
// @Router /auth/verify-otp [post]
func (h *AuthController) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	if err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "OTP verified successfully",
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password
// @Summary Reset password with a verified OTP
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Email, OTP code and new password"
// @Success 200 {object} models.APIResponse "Password reset"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid or expired OTP"
// @Router /auth/reset-password [post]
func (h *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Password has been reset successfully",
	})
}
