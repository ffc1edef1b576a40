package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// JWT
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// SMTP (OTP delivery)
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`

	// Uploads
	UploadDir       string `mapstructure:"upload_dir"`
	MaxUploadSizeMB int64  `mapstructure:"max_upload_size_mb"`
	MaxUploadFiles  int    `mapstructure:"max_upload_files"`

	// OTP
	OTPExpiryMinutes int `mapstructure:"otp_expiry_minutes"`
	OTPMaxAttempts   int `mapstructure:"otp_max_attempts"`

	// SLA
	DefaultSLATargetHours int    `mapstructure:"default_sla_target_hours"`
	SLASweepSchedule      string `mapstructure:"sla_sweep_schedule"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	Tables []string `mapstructure:"tables"`
}
