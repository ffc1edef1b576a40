package worker

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"moldcare-backend/models"
	"moldcare-backend/utils"
	"moldcare-backend/utils/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron"
)

// Worker wraps the models.Worker state with the behaviour of the background
// service: one-time infrastructure setup plus the recurring SLA sweep.
type Worker struct {
	Worker  *models.Worker
	sweeper *SLASweeper
}

func NewWorker(ctx context.Context, cfg *models.Config, log logger.Logger) (*models.Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	// Unique owner ID for this instance
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname = "localhost"
	}
	ownerID := fmt.Sprintf("worker-%s-%s", hostname, uuid.New().String()[:8])

	sweepSchedule := cfg.SLASweepSchedule
	if sweepSchedule == "" {
		sweepSchedule = "0 */15 * * * *"
	}

	workerConfig := &models.WorkerConfig{
		SetupSchedule:     getSetupScheduleForEnvironment(cfg.AppEnv),
		SweepSchedule:     sweepSchedule,
		LockTimeout:       30 * time.Minute,
		LockRetryInterval: 5 * time.Second,
		MaxRetries:        5,
		RetryDelay:        2 * time.Second,
		BackoffMultiplier: 2.0,
		Environment:       cfg.AppEnv,
		RequiredTables:    cfg.Tables,
		LockFilePath:      fmt.Sprintf("/tmp/moldcare-infrastructure-%s.lock", cfg.AppEnv),
		StatusFilePath:    fmt.Sprintf("/tmp/moldcare-status-%s.json", cfg.AppEnv),
		DryRun:            os.Getenv("INFRASTRUCTURE_DRY_RUN") == "true",
		RunOnce:           true,
	}

	if err := validateWorkerConfig(workerConfig); err != nil {
		return nil, fmt.Errorf("invalid worker configuration: %w", err)
	}

	infrastructureSetup, err := NewInfrastructureSetup(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create infrastructure setup: %w", err)
	}

	lockManager := NewLockManager(workerConfig.LockFilePath, workerConfig.LockTimeout, workerConfig.Environment)
	statusManager := NewStatusManager(workerConfig.StatusFilePath)

	cronJob := cron.New()
	ctx, cancel := context.WithCancel(context.Background())

	return &models.Worker{
		Config:              cfg,
		Logger:              log,
		CronJob:             cronJob,
		LockManager:         lockManager,
		StatusManager:       statusManager.ToModelsStatusManager(),
		InfrastructureSetup: infrastructureSetup.ToModelsInfrastructureSetup(),
		WorkerConfig:        workerConfig,
		OwnerID:             ownerID,
		StopChan:            make(chan struct{}),
		Ctx:                 ctx,
		Cancel:              cancel,
	}, nil
}

// Start runs the one-time infrastructure setup and schedules the SLA sweep
func (w *Worker) Start() error {
	w.Worker.Mu.Lock()
	defer w.Worker.Mu.Unlock()

	if w.Worker.IsRunning {
		return fmt.Errorf("worker is already running")
	}

	if w.Worker.Ctx == nil || w.Worker.Cancel == nil {
		return fmt.Errorf("worker context is nil, worker may have been improperly initialized")
	}

	select {
	case <-w.Worker.Ctx.Done():
		return fmt.Errorf("worker context is cancelled, cannot start")
	default:
	}

	w.Worker.Logger.Infof("Starting background worker %s", w.Worker.OwnerID)
	w.Worker.Logger.Infof("SLA sweep schedule: %s", w.Worker.WorkerConfig.SweepSchedule)

	// Schedule the recurring SLA sweep
	if w.sweeper != nil {
		if err := w.Worker.CronJob.AddFunc(w.Worker.WorkerConfig.SweepSchedule, w.sweepJob); err != nil {
			return fmt.Errorf("failed to add SLA sweep job: %w", err)
		}
	}

	w.Worker.CronJob.Start()
	w.Worker.IsRunning = true

	// Infrastructure setup runs once in the background
	go w.runOnceSetup()

	return nil
}

// runOnceSetup executes the infrastructure setup a single time
func (w *Worker) runOnceSetup() {
	defer func() {
		if r := recover(); r != nil {
			w.Worker.Logger.Errorf("Setup panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(w.Worker.Ctx, 15*time.Minute)
	defer cancel()

	w.executeSetupJob(ctx)
}

// sweepJob runs one SLA sweep with a bounded execution time
func (w *Worker) sweepJob() {
	ctx, cancel := context.WithTimeout(w.Worker.Ctx, 5*time.Minute)
	defer cancel()

	swept, marked, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.Worker.Logger.Errorf("SLA sweep failed: %v", err)
		return
	}

	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	if err := statusManager.RecordSweep(swept, marked); err != nil {
		w.Worker.Logger.Warnf("Failed to record sweep outcome: %v", err)
	}
}

// executeSetupJob runs the infrastructure setup guarded by the file lock
func (w *Worker) executeSetupJob(ctx context.Context) {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}

	select {
	case <-w.Worker.Ctx.Done():
		w.Worker.Logger.Info("Worker is stopping, skipping setup")
		return
	case <-ctx.Done():
		w.Worker.Logger.Info("Context cancelled, skipping setup")
		return
	default:
	}

	// Skip if a previous run already finished
	if completed, err := statusManager.IsSetupCompleted(); err != nil {
		if strings.Contains(err.Error(), "no such file or directory") {
			w.Worker.Logger.Debug("Status file not found, proceeding with setup")
		} else {
			w.Worker.Logger.Errorf("Failed to check completion status: %v", err)
		}
	} else if completed {
		w.Worker.Logger.Info("Infrastructure setup already completed, skipping")
		return
	}

	lockInfo, err := w.acquireLockWithContext(ctx)
	if err != nil {
		w.Worker.Logger.Warnf("Failed to acquire lock: %v", err)
		return
	}

	defer func() {
		lockManager := &LockManager{LockManager: *w.Worker.LockManager}
		if err := lockManager.ReleaseLock(lockInfo); err != nil {
			w.Worker.Logger.Errorf("Failed to release lock: %v", err)
		}
	}()

	w.Worker.Logger.Info("Lock acquired, starting infrastructure setup")

	if err := w.executeSetupWithErrorHandling(ctx); err != nil {
		w.Worker.Logger.Errorf("Infrastructure setup failed: %v", err)
		if err := w.handleSetupFailure(err); err != nil {
			w.Worker.Logger.Errorf("Failed to handle setup failure: %v", err)
		}
		return
	}

	w.Worker.Logger.Info("Infrastructure setup completed successfully, all tables are ready")

	if result, err := statusManager.LoadStatus(); err == nil {
		w.Worker.Logger.Debugf("Setup execution result:\n%s", utils.PrintPrettyJSON(result))
	}
}

// validateWorkerConfig validates the worker configuration
func validateWorkerConfig(config *models.WorkerConfig) error {
	if config == nil {
		return fmt.Errorf("worker config cannot be nil")
	}

	if config.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if config.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive")
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}
	if config.BackoffMultiplier <= 1.0 {
		return fmt.Errorf("backoff multiplier must be greater than 1.0")
	}
	if len(config.RequiredTables) == 0 {
		return fmt.Errorf("at least one required table must be specified")
	}
	if config.LockFilePath == "" {
		return fmt.Errorf("lock file path is required")
	}
	if config.StatusFilePath == "" {
		return fmt.Errorf("status file path is required")
	}

	cronParser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for _, schedule := range []string{config.SetupSchedule, config.SweepSchedule} {
		if schedule == "" {
			continue
		}
		if _, err := cronParser.Parse(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
		}
	}

	return nil
}

// getSetupScheduleForEnvironment returns environment-specific cron schedules
func getSetupScheduleForEnvironment(env string) string {
	switch env {
	case "development":
		return "*/30 * * * * *"
	case "testing":
		return "0 */5 * * * *"
	case "production":
		return "0 */15 * * * *"
	default:
		return "0 */10 * * * *"
	}
}

// GetStatus returns the current worker status
func (w *Worker) GetStatus() (*models.ExecutionResult, error) {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	return statusManager.LoadStatus()
}

// IsRunning returns whether the worker is currently running
func (w *Worker) IsRunning() bool {
	w.Worker.Mu.RLock()
	defer w.Worker.Mu.RUnlock()
	return w.Worker.IsRunning
}

// Stop stops the background worker
func (w *Worker) Stop() error {
	w.Worker.StopOnce.Do(func() {
		w.Worker.Mu.Lock()
		defer w.Worker.Mu.Unlock()

		if !w.Worker.IsRunning {
			return
		}

		w.Worker.Logger.Info("Stopping background worker")

		if w.Worker.Cancel != nil {
			w.Worker.Cancel()
		}

		if w.Worker.CronJob != nil {
			w.Worker.CronJob.Stop()
		}

		w.Worker.IsRunning = false

		select {
		case <-w.Worker.StopChan:
		default:
			close(w.Worker.StopChan)
		}

		w.Worker.Logger.Info("Background worker stopped")
	})

	return nil
}

// acquireLockWithContext tries to acquire the lock with cancellation support
func (w *Worker) acquireLockWithContext(ctx context.Context) (*models.LockInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	type result struct {
		lockInfo *models.LockInfo
		err      error
	}

	resultChan := make(chan result, 1)

	go func() {
		lockManager := &LockManager{LockManager: *w.Worker.LockManager}
		lockInfo, err := lockManager.AcquireLock(w.Worker.OwnerID)
		resultChan <- result{lockInfo, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("lock acquisition cancelled: %w", ctx.Err())
	case res := <-resultChan:
		return res.lockInfo, res.err
	}
}

// executeSetupWithErrorHandling executes setup and tracks progress on disk
func (w *Worker) executeSetupWithErrorHandling(ctx context.Context) error {
	setupCtx, cancel := context.WithTimeout(ctx, 15*time.Minute)
	defer cancel()

	result := &models.ExecutionResult{
		StartTime:     time.Now(),
		Status:        models.StatusRunning,
		Environment:   w.Worker.Config.AppEnv,
		TablesCreated: make([]models.TableStatus, 0),
		Metadata:      make(map[string]any),
	}

	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}
	if err := statusManager.SaveStatus(result); err != nil {
		w.Worker.Logger.Errorf("Failed to save initial status: %v", err)
	}

	if w.Worker.WorkerConfig.DryRun {
		w.Worker.Logger.Info("Running in DRY RUN mode, no changes will be made")
		result.Success = true
		result.Status = models.StatusCompleted
		result.Metadata["dry_run"] = true
		return statusManager.SaveStatus(result)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("infrastructure setup panicked: %v", r)
			w.Worker.Logger.Errorf("Setup panic: %v", err)
			statusManager.MarkFailed(err.Error())
		}
	}()

	infrastructureSetup := &InfrastructureSetup{
		InfrastructureSetup: *w.Worker.InfrastructureSetup,
	}
	return infrastructureSetup.Execute(setupCtx, statusManager)
}

// handleSetupFailure applies the retry bookkeeping after a failed setup
func (w *Worker) handleSetupFailure(setupErr error) error {
	statusManager := &StatusManager{StatusManager: *w.Worker.StatusManager}

	retryCount, err := statusManager.GetRetryCount()
	if err != nil {
		w.Worker.Logger.Warnf("Failed to get retry count, assuming 0: %v", err)
		retryCount = 0
	}

	if retryCount >= w.Worker.WorkerConfig.MaxRetries {
		w.Worker.Logger.Errorf("Maximum retries (%d) exceeded, giving up", w.Worker.WorkerConfig.MaxRetries)
		return statusManager.MarkFailed(fmt.Sprintf("Max retries exceeded: %v", setupErr))
	}

	if err := statusManager.IncrementRetryCount(); err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	retryDelay := w.calculateRetryDelay(retryCount)

	w.Worker.Logger.Warnf("Setup failed (attempt %d/%d), will retry in %v: %v",
		retryCount+1, w.Worker.WorkerConfig.MaxRetries+1, retryDelay, setupErr)

	return statusManager.UpdateProgress(models.StatusRetrying,
		fmt.Sprintf("Retrying after failure: %v", setupErr),
		map[string]any{
			"next_retry_at": time.Now().Add(retryDelay),
			"last_error":    setupErr.Error(),
		})
}

// calculateRetryDelay computes the exponential backoff delay, capped at 1h
func (w *Worker) calculateRetryDelay(retryCount int) time.Duration {
	delay := float64(w.Worker.WorkerConfig.RetryDelay.Nanoseconds())

	for i := 0; i < retryCount; i++ {
		delay *= w.Worker.WorkerConfig.BackoffMultiplier
	}

	maxDelay := float64((1 * time.Hour).Nanoseconds())
	if delay > maxDelay {
		delay = maxDelay
	}

	return time.Duration(int64(delay))
}
