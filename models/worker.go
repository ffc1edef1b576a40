package models

import (
	"context"
	"moldcare-backend/utils/logger"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/robfig/cron"
)

// DBClient interface to avoid circular dependency with the dal package
type DBClient interface {
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
	EnableTTL(ctx context.Context, tableName, attribute string) error
}

// StatusManager persists infrastructure setup status to disk
type StatusManager struct {
	StatusFilePath string
}

// LockManager guards infrastructure setup so only one instance runs it
type LockManager struct {
	LockFilePath string
	LockTimeout  time.Duration
	Environment  string
}

// Worker manages the infrastructure setup and SLA sweep cron jobs
type Worker struct {
	Config              *Config
	Logger              logger.Logger
	CronJob             *cron.Cron
	LockManager         *LockManager
	StatusManager       *StatusManager
	InfrastructureSetup *InfrastructureSetup

	WorkerConfig *WorkerConfig
	OwnerID      string
	IsRunning    bool
	StopChan     chan struct{}

	Mu       sync.RWMutex
	Ctx      context.Context
	Cancel   context.CancelFunc
	StopOnce sync.Once
}

// InfrastructureSetup handles table and TTL provisioning
type InfrastructureSetup struct {
	Config   *Config
	Logger   logger.Logger
	DBClient DBClient
}

// WorkerConfig holds configuration for the background worker
type WorkerConfig struct {
	// Cron schedules
	SetupSchedule string `json:"setup_schedule"`
	SweepSchedule string `json:"sweep_schedule"`

	// Lock settings
	LockTimeout       time.Duration `json:"lock_timeout"`
	LockRetryInterval time.Duration `json:"lock_retry_interval"`

	// Retry settings
	MaxRetries        int           `json:"max_retries"`
	RetryDelay        time.Duration `json:"retry_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`

	// Environment settings
	Environment    string   `json:"environment"`
	RequiredTables []string `json:"required_tables"`

	// Paths
	LockFilePath   string `json:"lock_file_path"`
	StatusFilePath string `json:"status_file_path"`

	// Feature flags
	DryRun  bool `json:"dry_run"`
	RunOnce bool `json:"run_once"`
}

// LockInfo represents lock file contents
type LockInfo struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	AcquiredAt  time.Time `json:"acquired_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Environment string    `json:"environment"`
}

// WorkerStatus represents the current status of the background worker
type WorkerStatus string

const (
	StatusIdle           WorkerStatus = "idle"
	StatusRunning        WorkerStatus = "running"
	StatusCreatingTables WorkerStatus = "creating_tables"
	StatusCompleted      WorkerStatus = "completed"
	StatusFailed         WorkerStatus = "failed"
	StatusRetrying       WorkerStatus = "retrying"
)

// ExecutionResult holds the result of one worker run
type ExecutionResult struct {
	Success       bool           `json:"success"`
	Status        WorkerStatus   `json:"status"`
	Phase         string         `json:"phase,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       *time.Time     `json:"end_time,omitempty"`
	Duration      time.Duration  `json:"duration"`
	TablesCreated []TableStatus  `json:"tables_created"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	RetryCount    int            `json:"retry_count"`
	Environment   string         `json:"environment"`
	Metadata      map[string]any `json:"metadata,omitempty"`

	// SLA sweep bookkeeping
	SweptRequests int `json:"swept_requests,omitempty"`
	MarkedOverdue int `json:"marked_overdue,omitempty"`
}

// TableStatus represents table provisioning status
type TableStatus struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"` // CREATING, ACTIVE, FAILED
	CreatedAt      time.Time  `json:"created_at"`
	BecameActiveAt *time.Time `json:"became_active_at,omitempty"`
	TTLEnabled     bool       `json:"ttl_enabled,omitempty"`
}
