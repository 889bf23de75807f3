package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/infrastructure/persistence/models"
)

// installmentBatchSize bounds the rows per INSERT when creating a schedule
const installmentBatchSize = 100

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an installment by ID and locks its row
func (r *GormInstallmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormInstallmentRepository) findByID(db *gorm.DB, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err, "installment", id)
	}
	return model.ToDomain(), nil
}

// FindByAccount returns all installments of an account by sequence number
func (r *GormInstallmentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return r.findByAccount(r.db.WithContext(ctx), accountID)
}

// FindByAccountForUpdate returns all installments of an account and locks them
func (r *GormInstallmentRepository) FindByAccountForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return r.findByAccount(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), accountID)
}

func (r *GormInstallmentRepository) findByAccount(db *gorm.DB, accountID uuid.UUID) ([]*ledger.Installment, error) {
	var rows []models.InstallmentModel
	if err := db.Where("account_id = ?", accountID).
		Order("sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// FindOutstanding returns installments that still owe money, oldest due first
func (r *GormInstallmentRepository) FindOutstanding(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return r.findOutstanding(r.db.WithContext(ctx), accountID)
}

// FindOutstandingForUpdate returns outstanding installments and locks them
func (r *GormInstallmentRepository) FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID) ([]*ledger.Installment, error) {
	return r.findOutstanding(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), accountID)
}

func (r *GormInstallmentRepository) findOutstanding(db *gorm.DB, accountID uuid.UUID) ([]*ledger.Installment, error) {
	var rows []models.InstallmentModel
	if err := db.Where("account_id = ?", accountID).
		Where("amount_paid < amount").
		Where("status <> ?", string(ledger.InstallmentStatusCancelled)).
		Order("due_date ASC, sequence_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return installmentsToDomain(rows), nil
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *ledger.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isDuplicateKey(err) {
			return conflictf("installment %d already exists for account %s", installment.SequenceNumber, installment.AccountID)
		}
		return err
	}
	return nil
}

// SaveBatch inserts a schedule of installments
func (r *GormInstallmentRepository) SaveBatch(ctx context.Context, installments []*ledger.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	rows := make([]*models.InstallmentModel, len(installments))
	for i, inst := range installments {
		rows[i] = models.InstallmentModelFromDomain(inst)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, installmentBatchSize).Error; err != nil {
		if isDuplicateKey(err) {
			return conflictf("installment schedule overlaps existing sequence numbers")
		}
		return err
	}
	return nil
}

// MarkPendingAsPaid sets the status of every pending installment to paid.
// Amounts are left untouched.
func (r *GormInstallmentRepository) MarkPendingAsPaid(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("account_id = ? AND status = ?", accountID, string(ledger.InstallmentStatusPending)).
		Updates(map[string]any{
			"status":     string(ledger.InstallmentStatusPaid),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func installmentsToDomain(rows []models.InstallmentModel) []*ledger.Installment {
	out := make([]*ledger.Installment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ ledger.InstallmentRepository = (*GormInstallmentRepository)(nil)
