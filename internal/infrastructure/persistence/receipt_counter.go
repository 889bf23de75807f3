package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/tourops/backend/internal/domain/ledger"
)

// DefaultReceiptCounter is the counter row that numbers payment receipts
const DefaultReceiptCounter = "receipt"

const nextCounterSQL = `INSERT INTO receipt_counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = receipt_counters.value + 1
RETURNING value`

// GormReceiptCounter hands out receipt correlatives from a counter row.
// The upsert takes the row lock, so concurrent transactions serialize on it
// and a rolled back transaction releases its number.
type GormReceiptCounter struct {
	db   *gorm.DB
	name string
}

// NewGormReceiptCounter creates a counter bound to db
func NewGormReceiptCounter(db *gorm.DB) *GormReceiptCounter {
	return &GormReceiptCounter{db: db, name: DefaultReceiptCounter}
}

// Next increments the counter and returns the new value
func (c *GormReceiptCounter) Next(ctx context.Context) (int64, error) {
	var value int64
	if err := c.db.WithContext(ctx).Raw(nextCounterSQL, c.name).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// Ensure GormReceiptCounter implements ReceiptCounter
var _ ledger.ReceiptCounter = (*GormReceiptCounter)(nil)
