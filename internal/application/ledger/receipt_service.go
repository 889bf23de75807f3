package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/telemetry"
)

// ReceiptDocument is everything printed on a receipt
type ReceiptDocument struct {
	Payment     *ledger.Payment
	Account     *ledger.Account
	Installment *ledger.Installment // nil for deliveries
}

// ReceiptRenderer turns a receipt into a printable document
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, doc ReceiptDocument) ([]byte, error)
}

// ReceiptArchive keeps a copy of every rendered receipt
type ReceiptArchive interface {
	Archive(ctx context.Context, receiptNumber string, pdf []byte) (string, error)
}

// ReceiptService prints receipts for recorded payments
type ReceiptService struct {
	query    *QueryService
	renderer ReceiptRenderer
	archive  ReceiptArchive
	logger   *zap.Logger
}

// ReceiptServiceOption configures a ReceiptService
type ReceiptServiceOption func(*ReceiptService)

// WithReceiptArchive stores rendered receipts. Archive failures are logged
// and do not fail the render.
func WithReceiptArchive(archive ReceiptArchive, logger *zap.Logger) ReceiptServiceOption {
	return func(s *ReceiptService) {
		s.archive = archive
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(query *QueryService, renderer ReceiptRenderer, opts ...ReceiptServiceOption) *ReceiptService {
	s := &ReceiptService{query: query, renderer: renderer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render loads the payment and its context and renders the receipt.
// It returns the document and the receipt number.
func (s *ReceiptService) Render(ctx context.Context, paymentID uuid.UUID) ([]byte, string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", OperationRenderReceipt)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	if s.renderer == nil {
		return nil, "", shared.Validation("receipt printing is not configured")
	}

	payment, err := s.query.GetPayment(ctx, paymentID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	account, err := s.query.GetAccount(ctx, payment.AccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	doc := ReceiptDocument{Payment: payment, Account: account}
	if payment.InstallmentID != nil {
		inst, err := s.query.GetInstallment(ctx, *payment.InstallmentID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, "", err
		}
		doc.Installment = inst
	}

	pdf, err := s.renderer.RenderReceipt(ctx, doc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", shared.LedgerFailure(err)
	}
	if s.archive != nil {
		if key, err := s.archive.Archive(ctx, payment.ReceiptNumber, pdf); err != nil {
			s.logger.Warn("receipt archive failed",
				zap.String("receipt_number", payment.ReceiptNumber),
				zap.Error(err),
			)
		} else {
			telemetry.SetAttribute(span, "ledger.receipt_archive_key", key)
		}
	}
	telemetry.SetOK(span)
	return pdf, payment.ReceiptNumber, nil
}
