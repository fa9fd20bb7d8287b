package services

import (
	"context"
	"fmt"
	"time"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// BatchRepoFactory binds a batch repository to a role connection
type BatchRepoFactory func(db *gorm.DB) repositories.BatchRepository

// BatchService runs the maintenance procedures on demand
type BatchService struct {
	broker  repositories.ConnectionBroker
	newRepo BatchRepoFactory
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewBatchService creates a new batch service
func NewBatchService(broker repositories.ConnectionBroker, newRepo BatchRepoFactory, m *metrics.Metrics, log logger.Logger) *BatchService {
	return &BatchService{broker: broker, newRepo: newRepo, metrics: m, log: log, now: time.Now}
}

// Run executes one job and reports how many records it touched
func (s *BatchService) Run(ctx context.Context, auth *domain.AuthenticatedContext, job repositories.BatchJob) (*domain.BatchResult, error) {
	if !job.Valid() {
		return nil, fmt.Errorf("%w: unknown batch job %q", domain.ErrInvalidInput, job)
	}

	var processed int64
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Run(ctx, job)
		if err != nil {
			return err
		}
		if out.ProcessedCount == nil {
			return domain.ErrIncompleteResult
		}
		processed = *out.ProcessedCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BatchProcessed.WithLabelValues(string(job)).Add(float64(processed))
	}
	s.log.Info("Batch job finished",
		logger.String("job", string(job)),
		logger.Int64("processed", processed),
		logger.String("principal", auth.Principal()),
	)
	return &domain.BatchResult{Job: string(job), Processed: processed, RanAt: s.now()}, nil
}

// DailyReport summarises today's circulation for one branch, or for
// every branch when branchID is nil
func (s *BatchService) DailyReport(ctx context.Context, auth *domain.AuthenticatedContext, branchID *int64) (*domain.DailyReport, error) {
	var report *domain.DailyReport
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).DailyReport(ctx, branchID)
		if err != nil {
			return err
		}
		if out.Checkouts == nil || out.Returns == nil || out.NewPatrons == nil || out.Overdue == nil {
			return domain.ErrIncompleteResult
		}
		report = &domain.DailyReport{
			BranchID:    branchID,
			Checkouts:   *out.Checkouts,
			Returns:     *out.Returns,
			NewPatrons:  *out.NewPatrons,
			Overdue:     *out.Overdue,
			GeneratedAt: s.now(),
		}
		if out.TotalFines != nil {
			report.TotalFines = *out.TotalFines
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Daily report generated",
		logger.Int64("checkouts", report.Checkouts),
		logger.Int64("returns", report.Returns),
		logger.String("principal", auth.Principal()),
	)
	return report, nil
}

// ============================================================
// Scheduler
// ============================================================

// BatchScheduler runs every maintenance job on a cron schedule under the
// administrative principal
type BatchScheduler struct {
	batch *BatchService
	admin *domain.AuthenticatedContext
	cron  *cron.Cron
	log   logger.Logger
}

// NewBatchScheduler parses schedule and registers the jobs. It does not
// start running until Start is called.
func NewBatchScheduler(batch *BatchService, admin domain.DatabaseCredential, schedule string, log logger.Logger) (*BatchScheduler, error) {
	cl := cronLogger{log: log}
	s := &BatchScheduler{
		batch: batch,
		admin: &domain.AuthenticatedContext{
			Username:   "scheduler",
			ActingRole: domain.RoleSysAdmin,
			Credential: admin,
			Roles:      domain.NewRoleSet(domain.RoleSysAdmin),
		},
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		log: log,
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid batch schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the cron loop
func (s *BatchScheduler) Start() {
	s.cron.Start()
	s.log.Info("Batch scheduler started")
}

// Stop waits for a running job to finish
func (s *BatchScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("Batch scheduler stop timed out")
	}
	s.log.Info("Batch scheduler stopped")
}

// RunOnce runs all jobs in order. A failing job is logged and the rest
// still run.
func (s *BatchScheduler) RunOnce() {
	ctx := context.Background()
	for _, job := range repositories.BatchJobs {
		if _, err := s.batch.Run(ctx, s.admin, job); err != nil {
			s.log.Error("Batch job failed",
				logger.String("job", string(job)),
				logger.Err(err),
			)
		}
	}
}

// cronLogger adapts the service logger to cron.Logger
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, logger.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, logger.Err(err), logger.Any("details", keysAndValues))
}
