package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/ledger"
)

// AttachmentResolver checks that a transfer-proof reference points at a
// stored object and returns its canonical form.
type AttachmentResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// SummaryCache caches account summaries between writes
type SummaryCache interface {
	Get(ctx context.Context, accountID uuid.UUID) (*ledger.AccountSummary, bool, error)
	Set(ctx context.Context, summary *ledger.AccountSummary) error
	Invalidate(ctx context.Context, accountIDs ...uuid.UUID) error
}

// Metrics receives ledger business measurements
type Metrics interface {
	PaymentRecorded(ctx context.Context, operation string, method ledger.PaymentMethod, amount decimal.Decimal)
	AllocationCompleted(ctx context.Context, allocations int, applied, remaining decimal.Decimal)
	OperationRejected(ctx context.Context, operation, code string)
}

// Operation names used for spans, metrics and profiling labels
const (
	OperationPayInstallment    = "pay_installment"
	OperationRecordDelivery    = "record_delivery"
	OperationPayReservation    = "pay_reservation"
	OperationReconcileAmount   = "reconcile_installment_amount"
	OperationSetAccountStatus  = "set_account_status"
	OperationUpdateInstallment = "update_installment"
	OperationOpenAccount       = "open_account"
	OperationSweepOverdue      = "sweep_overdue"
	OperationGetAccountSummary = "get_account_summary"
	OperationRenderReceipt     = "render_receipt"
)

type noopMetrics struct{}

func (noopMetrics) PaymentRecorded(context.Context, string, ledger.PaymentMethod, decimal.Decimal) {}
func (noopMetrics) AllocationCompleted(context.Context, int, decimal.Decimal, decimal.Decimal)     {}
func (noopMetrics) OperationRejected(context.Context, string, string)                              {}

// PassthroughResolver accepts any non-empty reference as is. Used when no
// object storage is configured.
type PassthroughResolver struct{}

// Resolve implements AttachmentResolver
func (PassthroughResolver) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}
