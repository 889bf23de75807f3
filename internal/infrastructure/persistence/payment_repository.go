package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/domain/shared"
	"github.com/tourops/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment. The unique index on installment_id turns a
// second payment for the same installment into a CONFLICT.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			if payment.InstallmentID != nil {
				return conflictf("installment %s already has a payment", payment.InstallmentID)
			}
			return conflictf("receipt %s already issued", payment.ReceiptNumber)
		}
		return err
	}
	return nil
}

// ExistsForInstallment reports whether a payment references the installment
func (r *GormPaymentRepository) ExistsForInstallment(ctx context.Context, installmentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("installment_id = ?", installmentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err, "payment", id)
	}
	return model.ToDomain(), nil
}

// FindByAccount returns the payments of an account in creation order
func (r *GormPaymentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC, receipt_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*ledger.Payment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func conflictf(format string, args ...any) error {
	return shared.Conflict(format, args...)
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
