package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tourops/backend/internal/domain/ledger"
)

// dateLayout is the wire format of calendar dates
const dateLayout = "2006-01-02"

// ScheduledInstallmentRequest is one explicit line of an installment plan
// @Description Explicit installment line
type ScheduledInstallmentRequest struct {
	DueDate string          `json:"due_date" binding:"required,datetime=2006-01-02" example:"2026-03-10"`
	Amount  decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"250.00"`
}

// OpenAccountRequest opens an account for a client on a reservation
// @Description Open account request. Explicit installments win over installment_count; with neither the account is free-form.
type OpenAccountRequest struct {
	ReservationID    string                        `json:"reservation_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClientID         string                        `json:"client_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	TotalAmount      decimal.Decimal               `json:"total_amount" binding:"required" swaggertype:"string" example:"1500.00"`
	InstallmentCount int                           `json:"installment_count" binding:"omitempty,min=0,max=120" example:"3"`
	FirstDueDate     string                        `json:"first_due_date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	IntervalMonths   int                           `json:"interval_months" binding:"omitempty,min=1,max=12" example:"1"`
	Installments     []ScheduledInstallmentRequest `json:"installments" binding:"omitempty,dive"`
}

// PayInstallmentRequest registers a payment against one installment
// @Description Installment payment request
type PayInstallmentRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"250.00"`
	Method       string          `json:"payment_method" binding:"required,payment_method" example:"cash"`
	PaymentDate  string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	Observations string          `json:"observations" binding:"max=1000"`
	Extra        json.RawMessage `json:"extra" swaggertype:"object"`
}

// RecordDeliveryRequest registers a free-form delivery against an account
// @Description Delivery request for accounts without an installment plan
type RecordDeliveryRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"300.00"`
	Method        string          `json:"payment_method" binding:"required,payment_method" example:"bank_transfer"`
	PaymentDate   string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	Observations  string          `json:"observations" binding:"max=1000"`
	Extra         json.RawMessage `json:"extra" swaggertype:"object"`
	AttachmentRef string          `json:"attachment_ref" binding:"max=512" example:"receipts/transfer-0001.jpg"`
}

// PayReservationRequest spreads one lump payment across a reservation
// @Description Lump payment over the outstanding installments of a reservation
type PayReservationRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"800.00"`
	Method         string          `json:"payment_method" binding:"required,payment_method" example:"cash"`
	PaymentDate    string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	Observations   string          `json:"observations" binding:"max=1000"`
	ClientID       string          `json:"client_id" binding:"omitempty,uuid"`
	InstallmentIDs []string        `json:"installment_ids" binding:"omitempty,dive,uuid"`
}

// SetAccountStatusRequest changes an account status by hand
// @Description Manual account status change
type SetAccountStatusRequest struct {
	Status string `json:"status" binding:"required,account_status" example:"cancelled" enums:"pending,in_progress,paid,overdue,cancelled"`
}

// UpdateInstallmentRequest edits an installment. Absent fields are kept.
// @Description Partial installment update
type UpdateInstallmentRequest struct {
	DueDate      *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02" example:"2026-04-10"`
	Amount       *decimal.Decimal `json:"amount" swaggertype:"string" example:"300.00"`
	Status       *string          `json:"status" binding:"omitempty,installment_status" example:"pending"`
	Observations *string          `json:"observations" binding:"omitempty,max=1000"`
}

// ChangeInstallmentAmountRequest sets a new amount and reconciles the account
// @Description Installment amount edit with account reconciliation
type ChangeInstallmentAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"300.00"`
}

// AccountResponse represents an account in API responses
// @Description Client account on a reservation
type AccountResponse struct {
	ID               string `json:"id" example:"550e8400-e29b-41d4-a716-446655440002"`
	ReservationID    string `json:"reservation_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClientID         string `json:"client_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	TotalAmount      string `json:"total_amount" example:"1500.00"`
	AmountPaid       string `json:"amount_paid" example:"250.00"`
	BalanceDue       string `json:"balance_due" example:"1250.00"`
	InstallmentCount int    `json:"installment_count" example:"3"`
	Status           string `json:"status" example:"in_progress" enums:"pending,in_progress,paid,overdue,cancelled"`
	CreatedAt        string `json:"created_at" example:"2026-01-24T12:00:00Z"`
	UpdatedAt        string `json:"updated_at" example:"2026-01-24T12:00:00Z"`
	Version          int    `json:"version" example:"2"`
}

// InstallmentResponse represents an installment in API responses
// @Description Scheduled installment of an account
type InstallmentResponse struct {
	ID             string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440003"`
	AccountID      string  `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	SequenceNumber int     `json:"sequence_number" example:"1"`
	DueDate        string  `json:"due_date" example:"2026-03-10"`
	Amount         string  `json:"amount" example:"500.00"`
	AmountPaid     string  `json:"amount_paid" example:"250.00"`
	Outstanding    string  `json:"outstanding" example:"250.00"`
	Status         string  `json:"status" example:"partially_paid" enums:"pending,partially_paid,paid,overdue,cancelled"`
	PaymentMethod  string  `json:"payment_method,omitempty" example:"cash"`
	PaymentDate    *string `json:"payment_date,omitempty" example:"2026-03-08"`
	Observations   string  `json:"observations,omitempty"`
}

// PaymentResponse represents a recorded payment in API responses
// @Description Payment with its receipt number
type PaymentResponse struct {
	ID            string          `json:"id" example:"550e8400-e29b-41d4-a716-446655440004"`
	ReceiptNumber string          `json:"receipt_number" example:"REC-000042"`
	AccountID     string          `json:"account_id" example:"550e8400-e29b-41d4-a716-446655440002"`
	InstallmentID *string         `json:"installment_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440003"`
	ClientID      string          `json:"client_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	RecordedBy    string          `json:"recorded_by" example:"550e8400-e29b-41d4-a716-446655440005"`
	Amount        string          `json:"amount" example:"250.00"`
	PaymentMethod string          `json:"payment_method" example:"cash"`
	PaymentDate   string          `json:"payment_date" example:"2026-03-08"`
	Observations  string          `json:"observations,omitempty"`
	Extra         json.RawMessage `json:"extra,omitempty" swaggertype:"object"`
	AttachmentRef string          `json:"attachment_ref,omitempty"`
	CreatedAt     string          `json:"created_at" example:"2026-03-08T15:04:05Z"`
}

// OpenAccountResponse is a new account with its schedule
// @Description Opened account and its installments
type OpenAccountResponse struct {
	Account      AccountResponse       `json:"account"`
	Installments []InstallmentResponse `json:"installments"`
}

func toAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:               a.ID.String(),
		ReservationID:    a.ReservationID.String(),
		ClientID:         a.ClientID.String(),
		TotalAmount:      a.TotalAmount.StringFixed(2),
		AmountPaid:       a.AmountPaid.StringFixed(2),
		BalanceDue:       a.BalanceDue.StringFixed(2),
		InstallmentCount: a.InstallmentCount,
		Status:           a.Status.String(),
		CreatedAt:        a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.UTC().Format(time.RFC3339),
		Version:          a.Version,
	}
}

func toAccountResponses(accounts []*ledger.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	return out
}

func toInstallmentResponse(i *ledger.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:             i.ID.String(),
		AccountID:      i.AccountID.String(),
		SequenceNumber: i.SequenceNumber,
		DueDate:        i.DueDate.Format(dateLayout),
		Amount:         i.Amount.StringFixed(2),
		AmountPaid:     i.AmountPaid.StringFixed(2),
		Outstanding:    i.Outstanding().StringFixed(2),
		Status:         i.Status.String(),
		PaymentMethod:  i.PaymentMethod.String(),
		Observations:   i.Observations,
	}
	if i.PaymentDate != nil {
		d := i.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &d
	}
	return resp
}

func toInstallmentResponses(installments []*ledger.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(installments))
	for i, inst := range installments {
		out[i] = toInstallmentResponse(inst)
	}
	return out
}

func toPaymentResponse(p *ledger.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID.String(),
		ReceiptNumber: p.ReceiptNumber,
		AccountID:     p.AccountID.String(),
		ClientID:      p.ClientID.String(),
		RecordedBy:    p.RecordedBy.String(),
		Amount:        p.Amount.StringFixed(2),
		PaymentMethod: p.Method.String(),
		PaymentDate:   p.PaymentDate.Format(dateLayout),
		Observations:  p.Observations,
		Extra:         p.Extra,
		AttachmentRef: p.AttachmentRef,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.InstallmentID != nil {
		id := p.InstallmentID.String()
		resp.InstallmentID = &id
	}
	return resp
}

func toPaymentResponses(payments []*ledger.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	return out
}

// parseDate parses an optional wire date. Empty input yields nil.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
