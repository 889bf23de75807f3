package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appledger "github.com/tourops/backend/internal/application/ledger"
)

// OverdueSweepJobName identifies the overdue sweep in logs and stats
const OverdueSweepJobName = "ledger.overdue_sweep"

// Sweeper runs one overdue sweep pass
type Sweeper interface {
	Sweep(ctx context.Context) (appledger.SweepResult, error)
}

// OverdueSweepJob flags past-due installments on every run
type OverdueSweepJob struct {
	sweeper Sweeper
	logger  *zap.Logger
}

// NewOverdueSweepJob creates an OverdueSweepJob
func NewOverdueSweepJob(sweeper Sweeper, logger *zap.Logger) *OverdueSweepJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueSweepJob{sweeper: sweeper, logger: logger}
}

// Name implements Job
func (j *OverdueSweepJob) Name() string { return OverdueSweepJobName }

// Run implements Job. Accounts that fail individually are reported by the
// sweeper; the run only fails when the candidate query fails or every
// account failed.
func (j *OverdueSweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if result.Failures > 0 && result.AccountsFlagged == 0 {
		return fmt.Errorf("overdue sweep failed for %d accounts", result.Failures)
	}
	if result.Failures > 0 {
		j.logger.Warn("overdue sweep partially failed",
			zap.Int("accounts_flagged", result.AccountsFlagged),
			zap.Int("failures", result.Failures),
		)
	}
	return nil
}

var (
	_ Job     = (*OverdueSweepJob)(nil)
	_ Sweeper = (*appledger.OverdueSweeper)(nil)
)
