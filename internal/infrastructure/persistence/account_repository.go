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

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an account by ID and locks its row
func (r *GormAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormAccountRepository) findByID(db *gorm.DB, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err, "account", id)
	}
	return model.ToDomain(), nil
}

// FindByReservation returns the accounts of a reservation in creation order
func (r *GormAccountRepository) FindByReservation(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	return r.findByReservation(r.db.WithContext(ctx), reservationID)
}

// FindByReservationForUpdate returns the accounts of a reservation and locks them.
// Rows are locked in creation order so concurrent callers agree on lock order.
func (r *GormAccountRepository) FindByReservationForUpdate(ctx context.Context, reservationID uuid.UUID) ([]*ledger.Account, error) {
	return r.findByReservation(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), reservationID)
}

func (r *GormAccountRepository) findByReservation(db *gorm.DB, reservationID uuid.UUID) ([]*ledger.Account, error) {
	var rows []models.AccountModel
	if err := db.Where("reservation_id = ?", reservationID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]*ledger.Account, len(rows))
	for i := range rows {
		accounts[i] = rows[i].ToDomain()
	}
	return accounts, nil
}

// FindWithPastDueInstallments returns ids of non-cancelled accounts with
// unpaid installments due before asOf
func (r *GormAccountRepository) FindWithPastDueInstallments(ctx context.Context, asOf time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Distinct("installments.account_id").
		Joins("JOIN accounts ON accounts.id = installments.account_id").
		Where("installments.status IN ?", []string{
			string(ledger.InstallmentStatusPending),
			string(ledger.InstallmentStatusPartiallyPaid),
		}).
		Where("installments.due_date < ?", asOf).
		Where("accounts.status <> ?", string(ledger.AccountStatusCancelled))
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("installments.account_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
