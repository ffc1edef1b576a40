package models

import "time"

// UserRole represents the role of a user
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"
)

// User represents a registered client or admin account
type User struct {
	ID           string     `json:"id" dynamodbav:"id"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Name         string     `json:"name" dynamodbav:"name"`
	Company      string     `json:"company,omitempty" dynamodbav:"company,omitempty"`
	Phone        string     `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Role         UserRole   `json:"role" dynamodbav:"role"`
	IsActive     bool       `json:"is_active" dynamodbav:"is_active"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at,omitempty"`
}

// PublicProfile returns the user without credential material
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"company":    u.Company,
		"phone":      u.Phone,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt,
	}
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// SignupRequest is the request body for POST /auth/signup
// @Description User signup request with account details
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"securePassword123"`
	Name     string `json:"name" binding:"required" example:"John Doe"`
	Company  string `json:"company,omitempty" example:"Acme Moulding Ltd"`
	Phone    string `json:"phone,omitempty" example:"+1234567890"`
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is the request body for PUT /auth/profile
type UpdateProfileRequest struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ChangePasswordRequest is the request body for PUT /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}
