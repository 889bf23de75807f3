package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

// QueryService serves the read side of the ledger
type QueryService struct {
	accounts     ledger.AccountRepository
	installments ledger.InstallmentRepository
	payments     ledger.PaymentRepository
	cache        SummaryCache
	logger       *zap.Logger
	now          func() time.Time
}

// NewQueryService creates a new QueryService. cache may be nil.
func NewQueryService(
	accounts ledger.AccountRepository,
	installments ledger.InstallmentRepository,
	payments ledger.PaymentRepository,
	cache SummaryCache,
	logger *zap.Logger,
) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		accounts:     accounts,
		installments: installments,
		payments:     payments,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// GetAccount returns an account
func (s *QueryService) GetAccount(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// ListReservationAccounts returns the accounts of a reservation in load order
func (s *QueryService) ListReservationAccounts(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	return s.accounts.FindByReservation(ctx, reservationID)
}

// GetInstallment returns an installment
func (s *QueryService) GetInstallment(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	return s.installments.FindByID(ctx, id)
}

// ListInstallments returns all installments of an account by sequence
func (s *QueryService) ListInstallments(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.installments.FindByAccount(ctx, accountID)
}

// ListOutstanding returns the installments still owing money, oldest debt first
func (s *QueryService) ListOutstanding(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.installments.FindOutstanding(ctx, accountID)
}

// GetPayment returns a payment
func (s *QueryService) GetPayment(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	return s.payments.FindByID(ctx, id)
}

// ListPayments returns the receipts issued for an account
func (s *QueryService) ListPayments(ctx context.Context, accountID uuid.UUID) ([]*ledger.Payment, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.payments.FindByAccount(ctx, accountID)
}

// GetAccountSummary returns the reporting summary of an account. Cache
// failures are logged and fall through to the database.
func (s *QueryService) GetAccountSummary(ctx context.Context, accountID uuid.UUID) (*ledger.AccountSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationGetAccountSummary)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAccountID, accountID.String())

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, accountID)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.String("account_id", accountID.String()), zap.Error(err))
		} else if ok {
			telemetry.SetAttribute(span, "cache_hit", true)
			return cached, nil
		}
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	installments, err := s.installments.FindByAccount(ctx, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summary := ledger.Summarize(account, installments, s.now())
	if s.cache != nil {
		if err := s.cache.Set(ctx, &summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("account_id", accountID.String()), zap.Error(err))
		}
	}
	telemetry.SetOK(span)
	return &summary, nil
}
