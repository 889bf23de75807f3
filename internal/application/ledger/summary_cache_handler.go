package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
)

// SummaryInvalidationHandler drops cached summaries of accounts touched by
// a committed ledger event.
type SummaryInvalidationHandler struct {
	cache  SummaryCache
	logger *zap.Logger
}

// NewSummaryInvalidationHandler creates a new SummaryInvalidationHandler
func NewSummaryInvalidationHandler(cache SummaryCache, logger *zap.Logger) *SummaryInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeAccountSettled,
		ledger.EventTypeAccountStatusChanged,
		ledger.EventTypeReservationPaymentAllocated,
		ledger.EventTypeInstallmentAmountChanged,
		ledger.EventTypeInstallmentsOverdue,
		ledger.EventTypeInstallmentUpdated,
	}
}

// Handle invalidates the summaries of the event's accounts
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	scoped, ok := event.(ledger.AccountScoped)
	if !ok {
		return nil
	}
	ids := scoped.AccountIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := h.cache.Invalidate(ctx, ids...); err != nil {
		return fmt.Errorf("invalidate summaries for %s: %w", event.EventType(), err)
	}
	h.logger.Debug("account summaries invalidated",
		zap.String("event_type", event.EventType()),
		zap.Int("accounts", len(ids)),
	)
	return nil
}
