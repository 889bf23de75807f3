package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountSummary is the reporting view of an account
type AccountSummary struct {
	AccountID        uuid.UUID       `json:"account_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	BalanceDue       decimal.Decimal `json:"balance_due"`
	InstallmentCount int             `json:"installment_count"`
	PaidCount        int             `json:"cuotas_pagadas"`
	PendingCount     int             `json:"cuotas_pendientes"`
	OverdueCount     int             `json:"cuotas_vencidas"`
	PercentPaid      decimal.Decimal `json:"porcentaje_pagado"`
}

// Summarize builds the summary of account as of the given instant. An
// installment counts as overdue when flagged so, or when it is still unpaid
// and its due date is before asOf.
func Summarize(account *Account, installments []*Installment, asOf time.Time) AccountSummary {
	summary := AccountSummary{
		AccountID:        account.ID,
		TotalAmount:      account.TotalAmount,
		AmountPaid:       account.AmountPaid,
		BalanceDue:       account.BalanceDue,
		InstallmentCount: account.InstallmentCount,
		PercentPaid:      decimal.Zero,
	}

	for _, inst := range installments {
		switch inst.Status {
		case InstallmentStatusPaid:
			summary.PaidCount++
		case InstallmentStatusCancelled:
		default:
			summary.PendingCount++
			if inst.Status == InstallmentStatusOverdue || inst.DueDate.Before(asOf) {
				summary.OverdueCount++
			}
		}
	}

	if account.TotalAmount.IsPositive() {
		summary.PercentPaid = account.AmountPaid.
			Div(account.TotalAmount).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return summary
}
