package printing

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	appledger "github.com/tourops/backend/internal/application/ledger"
)

//go:embed templates/receipt.html
var defaultReceiptTemplate string

// ReceiptOptions configures a ReceiptRenderer
type ReceiptOptions struct {
	Locale   string
	Currency string
	// Issuer is printed as the receipt heading
	Issuer string
	// Template replaces the built-in receipt layout
	Template  string
	PaperSize PaperSize
	Timeout   time.Duration
	Logger    *zap.Logger
}

// ReceiptRenderer prints payment receipts as PDF
type ReceiptRenderer struct {
	pdf       PDFRenderer
	tmpl      *template.Template
	format    *Formatter
	issuer    string
	paperSize PaperSize
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewReceiptRenderer creates a ReceiptRenderer on top of a PDFRenderer
func NewReceiptRenderer(pdf PDFRenderer, opts ReceiptOptions) (*ReceiptRenderer, error) {
	format, err := NewFormatter(opts.Locale, opts.Currency)
	if err != nil {
		return nil, err
	}

	source := opts.Template
	if source == "" {
		source = defaultReceiptTemplate
	}
	tmpl, err := template.New("receipt").Parse(source)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "parse receipt template", err)
	}

	r := &ReceiptRenderer{
		pdf:       pdf,
		tmpl:      tmpl,
		format:    format,
		issuer:    opts.Issuer,
		paperSize: opts.PaperSize,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		now:       time.Now,
	}
	if r.paperSize == "" {
		r.paperSize = PaperSizeA5
	}
	if r.issuer == "" {
		r.issuer = "Payment receipt"
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r, nil
}

type installmentView struct {
	Sequence int
	DueDate  string
	Amount   string
}

type receiptView struct {
	Lang             string
	Issuer           string
	ReceiptNumber    string
	PaymentDate      string
	ClientID         string
	ReservationID    string
	Method           string
	Amount           string
	AccountTotal     string
	AccountPaid      string
	BalanceDue       string
	InstallmentCount int
	Installment      *installmentView
	Observations     string
	IssuedAt         string
}

// HTML renders the receipt document without printing it
func (r *ReceiptRenderer) HTML(doc appledger.ReceiptDocument) (string, error) {
	if doc.Payment == nil || doc.Account == nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "receipt needs a payment and its account", nil)
	}
	p, a := doc.Payment, doc.Account

	view := receiptView{
		Lang:             r.format.Locale().String(),
		Issuer:           r.issuer,
		ReceiptNumber:    p.ReceiptNumber,
		PaymentDate:      r.format.Date(p.PaymentDate),
		ClientID:         p.ClientID.String(),
		ReservationID:    a.ReservationID.String(),
		Method:           r.format.Label(string(p.Method)),
		Amount:           r.format.Amount(p.Amount),
		AccountTotal:     r.format.Amount(a.TotalAmount),
		AccountPaid:      r.format.Amount(a.AmountPaid),
		BalanceDue:       r.format.Amount(a.BalanceDue),
		InstallmentCount: a.InstallmentCount,
		Observations:     p.Observations,
		IssuedAt:         r.format.Date(r.now()),
	}
	if inst := doc.Installment; inst != nil {
		view.Installment = &installmentView{
			Sequence: inst.SequenceNumber,
			DueDate:  r.format.Date(inst.DueDate),
			Amount:   r.format.Amount(inst.Amount),
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "execute receipt template", err)
	}
	return buf.String(), nil
}

// RenderReceipt renders the receipt and prints it to PDF
func (r *ReceiptRenderer) RenderReceipt(ctx context.Context, doc appledger.ReceiptDocument) ([]byte, error) {
	html, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:      html,
		Title:     fmt.Sprintf("Receipt %s", doc.Payment.ReceiptNumber),
		PaperSize: r.paperSize,
		Margins:   DefaultMargins(),
		Timeout:   r.timeout,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info("receipt rendered",
		zap.String("receipt_number", doc.Payment.ReceiptNumber),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration),
	)
	return result.PDFData, nil
}

var _ appledger.ReceiptRenderer = (*ReceiptRenderer)(nil)
