package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/tourops/backend/internal/domain/ledger"
)

// AccountModel is the persistence model for ledger.Account
type AccountModel struct {
	AggregateModel
	ReservationID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_accounts_reservation"`
	ClientID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BalanceDue       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InstallmentCount int             `gorm:"not null;default:0"`
	Status           string          `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain entity
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		ReservationID:     m.ReservationID,
		ClientID:          m.ClientID,
		TotalAmount:       m.TotalAmount,
		AmountPaid:        m.AmountPaid,
		BalanceDue:        m.BalanceDue,
		InstallmentCount:  m.InstallmentCount,
		Status:            ledger.AccountStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain entity
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ReservationID = a.ReservationID
	m.ClientID = a.ClientID
	m.TotalAmount = a.TotalAmount
	m.AmountPaid = a.AmountPaid
	m.BalanceDue = a.BalanceDue
	m.InstallmentCount = a.InstallmentCount
	m.Status = string(a.Status)
}

// AccountModelFromDomain creates a new persistence model from a domain entity
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// InstallmentModel is the persistence model for ledger.Installment
type InstallmentModel struct {
	BaseModel
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_installments_account_seq,priority:1"`
	SequenceNumber int             `gorm:"not null;uniqueIndex:idx_installments_account_seq,priority:2"`
	DueDate        time.Time       `gorm:"not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentMethod  string          `gorm:"type:varchar(20)"`
	PaymentDate    *time.Time
	Observations   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain entity
func (m *InstallmentModel) ToDomain() *ledger.Installment {
	return &ledger.Installment{
		BaseEntity:     m.BaseModel.ToDomain(),
		AccountID:      m.AccountID,
		SequenceNumber: m.SequenceNumber,
		DueDate:        m.DueDate,
		Amount:         m.Amount,
		AmountPaid:     m.AmountPaid,
		Status:         ledger.InstallmentStatus(m.Status),
		PaymentMethod:  ledger.PaymentMethod(m.PaymentMethod),
		PaymentDate:    m.PaymentDate,
		Observations:   m.Observations,
	}
}

// FromDomain populates the persistence model from a domain entity
func (m *InstallmentModel) FromDomain(i *ledger.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.AccountID = i.AccountID
	m.SequenceNumber = i.SequenceNumber
	m.DueDate = i.DueDate
	m.Amount = i.Amount
	m.AmountPaid = i.AmountPaid
	m.Status = string(i.Status)
	m.PaymentMethod = string(i.PaymentMethod)
	m.PaymentDate = i.PaymentDate
	m.Observations = i.Observations
}

// InstallmentModelFromDomain creates a new persistence model from a domain entity
func InstallmentModelFromDomain(i *ledger.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

// PaymentModel is the persistence model for ledger.Payment. Rows are never
// updated, so there is no updated_at column.
type PaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptNumber string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_payments_installment"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecordedBy    uuid.UUID       `gorm:"type:uuid"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method        string          `gorm:"type:varchar(20);not null"`
	PaymentDate   time.Time       `gorm:"not null"`
	Observations  string          `gorm:"type:text"`
	Extra         datatypes.JSON
	AttachmentRef string    `gorm:"type:varchar(512)"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain entity
func (m *PaymentModel) ToDomain() *ledger.Payment {
	var extra json.RawMessage
	if len(m.Extra) > 0 {
		extra = json.RawMessage(m.Extra)
	}
	return &ledger.Payment{
		ID:            m.ID,
		ReceiptNumber: m.ReceiptNumber,
		AccountID:     m.AccountID,
		InstallmentID: m.InstallmentID,
		ClientID:      m.ClientID,
		RecordedBy:    m.RecordedBy,
		Amount:        m.Amount,
		Method:        ledger.PaymentMethod(m.Method),
		PaymentDate:   m.PaymentDate,
		Observations:  m.Observations,
		Extra:         extra,
		AttachmentRef: m.AttachmentRef,
		CreatedAt:     m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain entity
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		ID:            p.ID,
		ReceiptNumber: p.ReceiptNumber,
		AccountID:     p.AccountID,
		InstallmentID: p.InstallmentID,
		ClientID:      p.ClientID,
		RecordedBy:    p.RecordedBy,
		Amount:        p.Amount,
		Method:        string(p.Method),
		PaymentDate:   p.PaymentDate,
		Observations:  p.Observations,
		AttachmentRef: p.AttachmentRef,
		CreatedAt:     p.CreatedAt,
	}
	if len(p.Extra) > 0 {
		m.Extra = datatypes.JSON(p.Extra)
	}
	return m
}

// ReceiptCounterModel is a named monotonic counter
type ReceiptCounterModel struct {
	Name  string `gorm:"type:varchar(50);primary_key"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ReceiptCounterModel) TableName() string {
	return "receipt_counters"
}

// LedgerModels lists the models for AutoMigrate in tests
func LedgerModels() []any {
	return []any{
		&AccountModel{},
		&InstallmentModel{},
		&PaymentModel{},
		&ReceiptCounterModel{},
	}
}
