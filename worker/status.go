package worker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moldcare-backend/models"
)

// StatusManager embeds models.StatusManager to allow method definitions
type StatusManager struct {
	models.StatusManager
}

// NewStatusManager creates a new status manager
func NewStatusManager(statusPath string) *StatusManager {
	return &StatusManager{
		StatusManager: models.StatusManager{
			StatusFilePath: statusPath,
		},
	}
}

// ToModelsStatusManager returns the embedded models.StatusManager
func (sm *StatusManager) ToModelsStatusManager() *models.StatusManager {
	return &sm.StatusManager
}

func (sm *StatusManager) SaveStatus(result *models.ExecutionResult) error {
	if err := os.MkdirAll(filepath.Dir(sm.StatusFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	if result.EndTime == nil && (result.Status == models.StatusCompleted || result.Status == models.StatusFailed) {
		now := time.Now()
		result.EndTime = &now
		result.Duration = now.Sub(result.StartTime)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// Write atomically
	tempFile := sm.StatusFilePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %w", err)
	}
	if err := os.Rename(tempFile, sm.StatusFilePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename status file: %w", err)
	}

	return nil
}

func (sm *StatusManager) LoadStatus() (*models.ExecutionResult, error) {
	data, err := os.ReadFile(sm.StatusFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read status file: %w", err)
	}

	var result models.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return &result, nil
}

// IsSetupCompleted checks if infrastructure setup is completed
func (sm *StatusManager) IsSetupCompleted() (bool, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return false, err
	}

	return status.Status == models.StatusCompleted && status.Success, nil
}

func (sm *StatusManager) UpdateProgress(status models.WorkerStatus, message string, metadata map[string]any) error {
	currentStatus, err := sm.LoadStatus()
	if err != nil {
		currentStatus = &models.ExecutionResult{
			StartTime:     time.Now(),
			TablesCreated: make([]models.TableStatus, 0),
			Metadata:      make(map[string]any),
		}
	}

	currentStatus.Status = status
	if currentStatus.Metadata == nil {
		currentStatus.Metadata = make(map[string]any)
	}
	if message != "" {
		currentStatus.Metadata["last_message"] = message
		currentStatus.Metadata["last_update"] = time.Now()
	}
	for k, v := range metadata {
		currentStatus.Metadata[k] = v
	}

	return sm.SaveStatus(currentStatus)
}

// AddTableCreated records a table in the created list
func (sm *StatusManager) AddTableCreated(tableName string, ttlEnabled bool) error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	for _, table := range status.TablesCreated {
		if table.Name == tableName {
			return nil
		}
	}

	status.TablesCreated = append(status.TablesCreated, models.TableStatus{
		Name:       tableName,
		Status:     "CREATING",
		CreatedAt:  time.Now(),
		TTLEnabled: ttlEnabled,
	})
	return sm.SaveStatus(status)
}

// RecordSweep stores the outcome of the latest SLA sweep
func (sm *StatusManager) RecordSweep(swept, markedOverdue int) error {
	status, err := sm.LoadStatus()
	if err != nil {
		status = &models.ExecutionResult{
			StartTime:     time.Now(),
			TablesCreated: make([]models.TableStatus, 0),
		}
	}

	status.SweptRequests = swept
	status.MarkedOverdue = markedOverdue
	if status.Metadata == nil {
		status.Metadata = make(map[string]any)
	}
	status.Metadata["last_sweep_at"] = time.Now()

	return sm.SaveStatus(status)
}

// MarkCompleted marks the setup as completed
func (sm *StatusManager) MarkCompleted() error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.Success = true
	status.Status = models.StatusCompleted
	now := time.Now()
	status.EndTime = &now
	status.Duration = now.Sub(status.StartTime)

	return sm.SaveStatus(status)
}

// MarkFailed marks the setup as failed
func (sm *StatusManager) MarkFailed(errorMsg string) error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.Success = false
	status.Status = models.StatusFailed
	status.ErrorMessage = errorMsg
	now := time.Now()
	status.EndTime = &now
	status.Duration = now.Sub(status.StartTime)

	return sm.SaveStatus(status)
}

// GetRetryCount returns the persisted retry counter
func (sm *StatusManager) GetRetryCount() (int, error) {
	status, err := sm.LoadStatus()
	if err != nil {
		return 0, err
	}
	return status.RetryCount, nil
}

// IncrementRetryCount increments the retry counter
func (sm *StatusManager) IncrementRetryCount() error {
	status, err := sm.LoadStatus()
	if err != nil {
		return err
	}

	status.RetryCount++
	status.Status = models.StatusRetrying

	return sm.SaveStatus(status)
}

// ResetStatus removes the status file so setup can re-run
func (sm *StatusManager) ResetStatus() error {
	return os.Remove(sm.StatusFilePath)
}
