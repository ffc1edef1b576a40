package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"moldcare-backend/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// GetConfig reads the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	// Handle nested JSON structure from config.json
	if v.IsSet("app") {
		flattenNestedConfig(v)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Parse JWT expiration if it's a string
	if v.IsSet("jwt.expires_in") {
		expiresStr := v.GetString("jwt.expires_in")
		if expiresStr != "" {
			expires, err := time.ParseDuration(expiresStr)
			if err != nil {
				return nil, fmt.Errorf("invalid JWT expires_in format: %w", err)
			}
			config.JWTExpiresIn = expires
		}
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "MoldCare Backend")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")

	// JWT defaults: tokens live 7 days
	v.SetDefault("jwt_secret", "your-super-secret-jwt-key-change-this-in-production")
	v.SetDefault("jwt_expires_in", 7*24*time.Hour)

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	// SMTP defaults
	v.SetDefault("smtp_host", "localhost")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "no-reply@moldcare.local")

	// Upload defaults
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("max_upload_size_mb", 10)
	v.SetDefault("max_upload_files", 5)

	// OTP defaults
	v.SetDefault("otp_expiry_minutes", 10)
	v.SetDefault("otp_max_attempts", 3)

	// SLA defaults
	v.SetDefault("default_sla_target_hours", 72)
	v.SetDefault("sla_sweep_schedule", "0 */15 * * * *")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"*"})

	// Base Path default
	v.SetDefault("basePath", "/api/v1")

	// Tables to provision
	v.SetDefault("tables", []string{"users", "service_requests", "otps", "counters"})
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.JWTSecret == "your-super-secret-jwt-key-change-this-in-production" && c.AppEnv == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production environment")
	}

	if c.AppEnv == "production" && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	flat := map[string]string{
		"app.name":                  "app_name",
		"app.version":               "app_version",
		"app.env":                   "app_env",
		"app.host":                  "app_host",
		"app.port":                  "app_port",
		"jwt.secret":                "jwt_secret",
		"aws.region":                "aws_region",
		"aws.access_key_id":         "aws_access_key_id",
		"aws.secret_access_key":     "aws_secret_access_key",
		"aws.dynamodb_endpoint":     "dynamodb_endpoint",
		"aws.dynamodb_table_prefix": "dynamodb_table_prefix",
		"smtp.host":                 "smtp_host",
		"smtp.user":                 "smtp_user",
		"smtp.password":             "smtp_password",
		"smtp.from":                 "smtp_from",
		"uploads.dir":               "upload_dir",
		"sla.sweep_schedule":        "sla_sweep_schedule",
		"logging.level":             "log_level",
		"logging.format":            "log_format",
	}
	for nested, key := range flat {
		if v.IsSet(nested) {
			v.Set(key, v.GetString(nested))
		}
	}

	ints := map[string]string{
		"smtp.port":                "smtp_port",
		"uploads.max_size_mb":      "max_upload_size_mb",
		"uploads.max_files":        "max_upload_files",
		"otp.expiry_minutes":       "otp_expiry_minutes",
		"otp.max_attempts":         "otp_max_attempts",
		"sla.default_target_hours": "default_sla_target_hours",
	}
	for nested, key := range ints {
		if v.IsSet(nested) {
			v.Set(key, v.GetInt(nested))
		}
	}

	if v.IsSet("cors.origins") {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}
	if v.IsSet("basePath") {
		v.Set("basePath", v.GetString("basePath"))
	}
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateOTPCode returns a random 6-digit numeric code
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashPassword hashes a plain text password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares a hashed password with a plain text password.
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
