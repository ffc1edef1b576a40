package middelware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moldcare-backend/models"
	"moldcare-backend/repository"
	"moldcare-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextUserKey is the gin context key holding the authenticated user
const ContextUserKey = "current_user"

// JWTManager handles JWT token operations
type JWTManager struct {
	Config   *models.Config
	Logger   logger.Logger
	UserRepo repository.UserRepositoryInterface
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *models.Config, log logger.Logger, userRepo repository.UserRepositoryInterface) *JWTManager {
	return &JWTManager{
		Config:   cfg,
		Logger:   log,
		UserRepo: userRepo,
	}
}

// GenerateToken generates a JWT token for a user
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	claims := models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    j.Config.AppName,
			Audience:  jwt.ClaimStrings{j.Config.AppName},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.Config.JWTExpiresIn)),
			NotBefore: jwt.NewNumericDate(time.Now()),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.Config.JWTSecret))
	if err != nil {
		j.Logger.Errorf("Failed to sign JWT token: %v", err)
		return "", err
	}

	j.Logger.Debugf("Generated JWT token for user: %s", user.ID)
	return tokenString, nil
}

// ValidateToken validates a JWT token and cross-verifies the user against the
// database. Returns the claims and the current user record.
func (j *JWTManager) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, *models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks
		if method, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		} else if method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("invalid signing algorithm: %v", method.Alg())
		}
		return []byte(j.Config.JWTSecret), nil
	})
	if err != nil {
		j.Logger.Errorf("Failed to parse JWT token: %v", err)
		return nil, nil, err
	}

	if !token.Valid {
		j.Logger.Error("Invalid JWT token")
		return nil, nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok {
		j.Logger.Error("Failed to extract JWT claims")
		return nil, nil, fmt.Errorf("invalid claims")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, nil, fmt.Errorf("token expired")
	}
	if claims.NotBefore != nil && claims.NotBefore.After(time.Now()) {
		return nil, nil, fmt.Errorf("token not yet valid")
	}

	// Cross-verify with the database so disabled accounts lose access
	// immediately rather than at token expiry
	var user *models.User
	if j.UserRepo != nil {
		user, err = j.UserRepo.GetUserByID(ctx, claims.UserID)
		if err != nil {
			j.Logger.Errorf("Failed to verify user %s in database: %v", claims.UserID, err)
			return nil, nil, fmt.Errorf("user verification failed")
		}
		if !user.IsActive {
			j.Logger.Errorf("User %s is deactivated", claims.UserID)
			return nil, nil, fmt.Errorf("user account is deactivated")
		}
	}

	j.Logger.Debugf("Successfully validated JWT token for user: %s", claims.UserID)
	return claims, user, nil
}

// AuthMiddleware validates the Bearer token from the Authorization header and
// places the authenticated user in the request context.
func (j *JWTManager) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			j.Logger.Error("Missing Authorization header")
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "Missing Authorization header",
				Error:   "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			j.Logger.Error("Invalid Authorization header format")
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "Invalid Authorization header format",
				Error:   "Authorization header must be in format: Bearer <token>",
			})
			c.Abort()
			return
		}
		tokenString := strings.TrimSpace(parts[1])

		claims, user, err := j.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			j.Logger.Errorf("Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("jwt_claims", claims)
		c.Set(ContextUserKey, user)

		j.Logger.Debugf("User authenticated: %s", claims.UserID)
		c.Next()
	}
}

// RequireAdmin allows only users with the admin role past this point. It must
// run after AuthMiddleware.
func (j *JWTManager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Success: false,
				Message: "Authentication required",
				Error:   "User not authenticated",
			})
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			j.Logger.Errorf("User %s attempted an admin-only operation", user.ID)
			c.JSON(http.StatusForbidden, models.APIResponse{
				Success: false,
				Message: "Insufficient permissions",
				Error:   "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated user from the gin context, or nil
func CurrentUser(c *gin.Context) *models.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
