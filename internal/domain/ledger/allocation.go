package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/shared"
)

// AllocationCandidate is one account of a reservation together with the
// installments a lump payment may touch.
type AllocationCandidate struct {
	Account      *Account
	Installments []*Installment
}

// Allocation is one line of a lump-sum breakdown
type Allocation struct {
	AccountID      uuid.UUID       `json:"account_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	InstallmentID  uuid.UUID       `json:"installment_id"`
	SequenceNumber int             `json:"sequence_number"`
	AmountApplied  decimal.Decimal `json:"amount_applied"`
}

// AccountAllocation is the amount a lump sum moved into one account
type AccountAllocation struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

// AllocationPlan is the complete, ordered breakdown of a lump sum
type AllocationPlan struct {
	Allocations    []Allocation
	AccountTotals  []AccountAllocation // One entry per account that received money, in account order
	TotalAllocated decimal.Decimal
	Remaining      decimal.Decimal
}

// FullyAllocated reports whether the whole amount found a home
func (p *AllocationPlan) FullyAllocated() bool {
	return !p.Remaining.IsPositive()
}

// PlanAllocation distributes amount across candidates. Accounts are visited in
// the order given; within an account the oldest debt is paid first (due date,
// then sequence number). Each installment gets min(remaining, outstanding).
// Whatever cannot be placed is reported as Remaining.
func PlanAllocation(amount decimal.Decimal, candidates []AllocationCandidate) (*AllocationPlan, error) {
	if !amount.IsPositive() {
		return nil, shared.InvalidAmount("allocation amount must be positive")
	}

	plan := &AllocationPlan{
		Allocations:    make([]Allocation, 0),
		AccountTotals:  make([]AccountAllocation, 0),
		TotalAllocated: decimal.Zero,
		Remaining:      amount,
	}

	for _, candidate := range candidates {
		if !plan.Remaining.IsPositive() {
			break
		}

		ordered := make([]*Installment, len(candidate.Installments))
		copy(ordered, candidate.Installments)
		SortOutstanding(ordered)

		accountSum := decimal.Zero
		for _, inst := range ordered {
			if !plan.Remaining.IsPositive() {
				break
			}
			if !inst.IsOutstanding() {
				continue
			}
			toApply := decimal.Min(plan.Remaining, inst.Outstanding())
			if !toApply.IsPositive() {
				continue
			}

			plan.Allocations = append(plan.Allocations, Allocation{
				AccountID:      candidate.Account.ID,
				ClientID:       candidate.Account.ClientID,
				InstallmentID:  inst.ID,
				SequenceNumber: inst.SequenceNumber,
				AmountApplied:  toApply,
			})
			accountSum = accountSum.Add(toApply)
			plan.Remaining = plan.Remaining.Sub(toApply)
		}

		if accountSum.IsPositive() {
			plan.AccountTotals = append(plan.AccountTotals, AccountAllocation{
				AccountID: candidate.Account.ID,
				Amount:    accountSum,
			})
			plan.TotalAllocated = plan.TotalAllocated.Add(accountSum)
		}
	}

	return plan, nil
}
