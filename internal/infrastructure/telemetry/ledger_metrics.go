package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tourops/backend/internal/domain/ledger"
)

// LedgerMetrics records ledger business measurements: payments by method,
// allocation outcomes and rejected operations by error code.
type LedgerMetrics struct {
	payments        *Counter
	paymentAmount   *Histogram
	allocations     *Counter
	allocationLines *Histogram
	allocated       *Histogram
	unapplied       *Histogram
	rejections      *Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewLedgerMetrics: meter cannot be nil")
	}

	var m LedgerMetrics
	var err error
	if m.payments, err = NewCounter(meter, "ledger.payments.total", "Receipts issued", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger.payments.amount",
		Description: "Amount per receipt",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.allocations, err = NewCounter(meter, "ledger.allocations.total", "Reservation allocations completed", "{allocation}"); err != nil {
		return nil, err
	}
	if m.allocationLines, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger.allocations.installments",
		Description: "Installments touched per reservation allocation",
		Unit:        "{installment}",
		Boundaries:  []float64{1, 2, 3, 5, 8, 13, 21},
	}); err != nil {
		return nil, err
	}
	if m.allocated, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger.allocations.applied",
		Description: "Amount applied per reservation allocation",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.unapplied, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger.allocations.unapplied",
		Description: "Amount left over after a reservation allocation",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.rejections, err = NewCounter(meter, "ledger.operations.rejected", "Ledger operations that failed", "{operation}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// PaymentRecorded counts one issued receipt
func (m *LedgerMetrics) PaymentRecorded(ctx context.Context, operation string, method ledger.PaymentMethod, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrOperation.String(operation), AttrPaymentMethod.String(string(method))}
	m.payments.Inc(ctx, attrs...)
	m.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}

// AllocationCompleted records the shape of a reservation allocation
func (m *LedgerMetrics) AllocationCompleted(ctx context.Context, allocations int, applied, remaining decimal.Decimal) {
	m.allocations.Inc(ctx)
	m.allocationLines.Record(ctx, float64(allocations))
	m.allocated.Record(ctx, applied.InexactFloat64())
	if remaining.IsPositive() {
		m.unapplied.Record(ctx, remaining.InexactFloat64())
	}
}

// OperationRejected counts a failed operation by error code
func (m *LedgerMetrics) OperationRejected(ctx context.Context, operation, code string) {
	m.rejections.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}
