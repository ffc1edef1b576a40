package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moldcare-backend/dal"
	"moldcare-backend/infrastructure"
	"moldcare-backend/models"
	"moldcare-backend/utils/logger"

	"github.com/aws/smithy-go"
)

// ttlAttribute is the expiry attribute enabled on the OTP table
const ttlAttribute = "ttl"

type InfrastructureSetup struct {
	InfrastructureSetup models.InfrastructureSetup
}

// ToModelsInfrastructureSetup returns the embedded models.InfrastructureSetup
func (is *InfrastructureSetup) ToModelsInfrastructureSetup() *models.InfrastructureSetup {
	return &is.InfrastructureSetup
}

// NewInfrastructureSetup creates a new infrastructure setup handler
func NewInfrastructureSetup(cfg *models.Config, log logger.Logger) (*InfrastructureSetup, error) {
	dbClient, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	return &InfrastructureSetup{
		InfrastructureSetup: models.InfrastructureSetup{
			Config:   cfg,
			Logger:   log,
			DBClient: dbClient,
		},
	}, nil
}

// Execute provisions all configured tables and enables TTL where needed
func (is *InfrastructureSetup) Execute(ctx context.Context, statusManager *StatusManager) error {
	is.InfrastructureSetup.Logger.Info("Starting infrastructure setup...")

	if err := statusManager.UpdateProgress(models.StatusCreatingTables, "Starting infrastructure setup", nil); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	// Create tables sequentially to avoid throttling
	for _, tableName := range is.tableNames() {
		if err := is.createTableWithRetry(ctx, tableName); err != nil {
			is.InfrastructureSetup.Logger.Errorf("Failed to create table %s: %v", tableName, err)
			statusManager.MarkFailed(fmt.Sprintf("Failed to create table %s: %v", tableName, err))
			return err
		}

		ttlEnabled := false
		if is.needsTTL(tableName) {
			if err := is.enableTTLWithRetry(ctx, tableName); err != nil {
				is.InfrastructureSetup.Logger.Warnf("Failed to enable TTL on %s: %v", tableName, err)
			} else {
				ttlEnabled = true
			}
		}

		statusManager.AddTableCreated(tableName, ttlEnabled)
		is.InfrastructureSetup.Logger.Infof("Table ready: %s", tableName)
	}

	return statusManager.MarkCompleted()
}

// tableNames returns the prefixed table names from the configuration
func (is *InfrastructureSetup) tableNames() []string {
	names := make([]string, 0, len(is.InfrastructureSetup.Config.Tables))
	for _, base := range is.InfrastructureSetup.Config.Tables {
		names = append(names, is.InfrastructureSetup.Config.DynamoDBTablePrefix+"_"+base)
	}
	return names
}

// needsTTL reports whether expired items of a table should auto-expire. Only
// the OTP table carries a TTL attribute.
func (is *InfrastructureSetup) needsTTL(tableName string) bool {
	return strings.HasSuffix(tableName, "_otps")
}

func (is *InfrastructureSetup) createTableWithRetry(ctx context.Context, tableName string) error {
	maxRetries := 3
	baseDelay := 5 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * baseDelay
			is.InfrastructureSetup.Logger.Infof("Retrying table creation for %s in %v (attempt %d/%d)", tableName, delay, attempt+1, maxRetries+1)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if exists, err := is.tableExists(ctx, tableName); err != nil {
			is.InfrastructureSetup.Logger.Errorf("Failed to check if table exists: %v", err)
			continue
		} else if exists {
			is.InfrastructureSetup.Logger.Infof("Table %s already exists, skipping creation", tableName)
			return nil
		}

		if err := is.createTableFromEmbeddedJSON(ctx, tableName); err != nil {
			// A concurrent instance may have won the race
			if isTableInUseError(err) {
				is.InfrastructureSetup.Logger.Infof("Table %s is being created elsewhere", tableName)
				return nil
			}
			is.InfrastructureSetup.Logger.Errorf("Attempt %d failed to create table %s: %v", attempt+1, tableName, err)

			if attempt == maxRetries {
				return fmt.Errorf("failed to create table %s after %d attempts: %w", tableName, maxRetries+1, err)
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("exhausted all retry attempts for table %s", tableName)
}

func (is *InfrastructureSetup) createTableFromEmbeddedJSON(ctx context.Context, tableName string) error {
	input, err := infrastructure.GetTables(tableName)
	if err != nil {
		return fmt.Errorf("failed to get table input: %w", err)
	}
	if err := is.InfrastructureSetup.DBClient.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (is *InfrastructureSetup) enableTTLWithRetry(ctx context.Context, tableName string) error {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = is.InfrastructureSetup.DBClient.EnableTTL(ctx, tableName, ttlAttribute); lastErr == nil {
			return nil
		}
		is.InfrastructureSetup.Logger.Warnf("Attempt %d failed to enable TTL on %s: %v", attempt+1, tableName, lastErr)
	}
	return lastErr
}

// isTableNotFoundError checks if an error indicates a missing table
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}

	errorStr := err.Error()
	return strings.Contains(errorStr, "ResourceNotFoundException") ||
		strings.Contains(errorStr, "Table not found") ||
		strings.Contains(errorStr, "Requested resource not found")
}

// isTableInUseError checks if an error indicates the table is already being
// created or is active
func isTableInUseError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceInUseException"
	}

	return strings.Contains(err.Error(), "ResourceInUseException")
}

// tableExists checks if a table already exists
func (is *InfrastructureSetup) tableExists(ctx context.Context, tableName string) (bool, error) {
	_, err := is.InfrastructureSetup.DBClient.DescribeTable(ctx, tableName)
	if err != nil {
		if isTableNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// validateInfrastructure verifies every configured table is ACTIVE
func (is *InfrastructureSetup) validateInfrastructure(ctx context.Context) error {
	is.InfrastructureSetup.Logger.Info("Validating infrastructure setup")

	for _, tableName := range is.tableNames() {
		desc, err := is.InfrastructureSetup.DBClient.DescribeTable(ctx, tableName)
		if err != nil {
			return fmt.Errorf("table %s validation failed: %w", tableName, err)
		}

		if desc.Table.TableStatus != "ACTIVE" {
			return fmt.Errorf("table %s is not active: %s", tableName, desc.Table.TableStatus)
		}

		is.InfrastructureSetup.Logger.Infof("Table %s validation passed", tableName)
	}

	is.InfrastructureSetup.Logger.Info("Infrastructure validation completed successfully")
	return nil
}
