package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/tourops/backend/internal/application/ledger"
	"github.com/tourops/backend/internal/domain/ledger"
	"github.com/tourops/backend/internal/infrastructure/logger"
	"github.com/tourops/backend/internal/interfaces/http/dto"
	"github.com/tourops/backend/internal/interfaces/http/middleware"
)

// LedgerHandler handles the installment ledger API
type LedgerHandler struct {
	BaseHandler
	accounts       *appledger.AccountService
	allocator      *appledger.Allocator
	reconciliation *appledger.Reconciliation
	query          *appledger.QueryService
	receipts       *appledger.ReceiptService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(
	accounts *appledger.AccountService,
	allocator *appledger.Allocator,
	reconciliation *appledger.Reconciliation,
	query *appledger.QueryService,
	receipts *appledger.ReceiptService,
) *LedgerHandler {
	return &LedgerHandler{
		accounts:       accounts,
		allocator:      allocator,
		reconciliation: reconciliation,
		query:          query,
		receipts:       receipts,
	}
}

// accountParam parses the :id parameter as an account and tags the request
// logger with it.
func (h *LedgerHandler) accountParam(c *gin.Context) (uuid.UUID, bool) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	ctx := c.Request.Context()
	ctx, _ = logger.WithAccountID(ctx, logger.FromContext(ctx), id.String())
	c.Request = c.Request.WithContext(ctx)
	return id, true
}

// OpenAccount godoc
// @ID           openLedgerAccount
// @Summary      Open an account
// @Description  Opens a client account on a reservation together with its installment plan
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Key that makes retries safe"
// @Param        request body OpenAccountRequest true "Account and plan"
// @Success      201 {object} APIResponse[OpenAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts [post]
func (h *LedgerHandler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	cmd := appledger.OpenAccountCommand{
		ReservationID:    uuid.MustParse(req.ReservationID),
		ClientID:         uuid.MustParse(req.ClientID),
		TotalAmount:      req.TotalAmount,
		InstallmentCount: req.InstallmentCount,
		IntervalMonths:   req.IntervalMonths,
	}
	if first, err := parseDate(req.FirstDueDate); err != nil {
		h.BadRequest(c, "Invalid first_due_date")
		return
	} else if first != nil {
		cmd.FirstDueDate = *first
	}
	for _, line := range req.Installments {
		due, err := parseDate(line.DueDate)
		if err != nil || due == nil {
			h.BadRequest(c, "Invalid installment due_date")
			return
		}
		cmd.Installments = append(cmd.Installments, appledger.ScheduledInstallment{DueDate: *due, Amount: line.Amount})
	}

	result, err := h.accounts.OpenAccount(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, OpenAccountResponse{
		Account:      toAccountResponse(result.Account),
		Installments: toInstallmentResponses(result.Installments),
	})
}

// GetAccount godoc
// @ID           getLedgerAccount
// @Summary      Get an account
// @Tags         ledger-accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id} [get]
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}

	account, err := h.query.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccountResponse(account))
}

// GetAccountSummary godoc
// @ID           getLedgerAccountSummary
// @Summary      Get an account summary
// @Description  Totals, installment counts by state and the percentage paid
// @Tags         ledger-accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.AccountSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/summary [get]
func (h *LedgerHandler) GetAccountSummary(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}

	summary, err := h.query.GetAccountSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListInstallments godoc
// @ID           listLedgerAccountInstallments
// @Summary      List the installments of an account
// @Tags         ledger-installments
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[[]InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/installments [get]
func (h *LedgerHandler) ListInstallments(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}

	installments, err := h.query.ListInstallments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInstallmentResponses(installments))
}

// ListOutstanding godoc
// @ID           listLedgerAccountOutstanding
// @Summary      List outstanding installments
// @Description  Installments that still accept payments, oldest due date first
// @Tags         ledger-installments
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[[]InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/installments/outstanding [get]
func (h *LedgerHandler) ListOutstanding(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}

	installments, err := h.query.ListOutstanding(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInstallmentResponses(installments))
}

// ListPayments godoc
// @ID           listLedgerAccountPayments
// @Summary      List the payments of an account
// @Tags         ledger-payments
// @Produce      json
// @Description  Payments in recording order, paginated
// @Param        id path string true "Account ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Success      200 {object} APIResponse[[]PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/payments [get]
func (h *LedgerHandler) ListPayments(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}
	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	page = page.Normalize()

	payments, err := h.query.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	total := len(payments)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	h.SuccessWithMeta(c, toPaymentResponses(payments[start:end]), int64(total), page.Page, page.PageSize)
}

// RecordDelivery godoc
// @ID           recordLedgerDelivery
// @Summary      Record a delivery
// @Description  Registers a payment against an account without an installment plan and issues a receipt
// @Tags         ledger-payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        Idempotency-Key header string false "Key that makes retries safe"
// @Param        request body RecordDeliveryRequest true "Delivery"
// @Success      201 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/deliveries [post]
func (h *LedgerHandler) RecordDelivery(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}
	recordedBy, ok := h.recorder(c)
	if !ok {
		return
	}

	var req RecordDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date")
		return
	}

	payment, err := h.allocator.RecordDelivery(c.Request.Context(), appledger.RecordDeliveryCommand{
		AccountID:     id,
		Amount:        req.Amount,
		Method:        ledger.PaymentMethod(req.Method),
		PaymentDate:   paymentDate,
		Observations:  req.Observations,
		Extra:         req.Extra,
		AttachmentRef: req.AttachmentRef,
		RecordedBy:    recordedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// SetAccountStatus godoc
// @ID           setLedgerAccountStatus
// @Summary      Change an account status
// @Description  Administrative status transition, for example cancelling the account of a cancelled reservation
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body SetAccountStatusRequest true "New status"
// @Success      200 {object} APIResponse[AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/accounts/{id}/status [patch]
func (h *LedgerHandler) SetAccountStatus(c *gin.Context) {
	id, ok := h.accountParam(c)
	if !ok {
		return
	}

	var req SetAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.accounts.SetAccountStatus(c.Request.Context(), id, ledger.AccountStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccountResponse(account))
}

// ListReservationAccounts godoc
// @ID           listLedgerReservationAccounts
// @Summary      List the accounts of a reservation
// @Tags         ledger-accounts
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} APIResponse[[]AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/reservations/{id}/accounts [get]
func (h *LedgerHandler) ListReservationAccounts(c *gin.Context) {
	reservationID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	accounts, err := h.query.ListReservationAccounts(c.Request.Context(), reservationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccountResponses(accounts))
}

// PayReservation godoc
// @ID           payLedgerReservation
// @Summary      Pay a reservation
// @Description  Spreads a lump payment over the outstanding installments of the reservation, oldest debt first. Any unapplied remainder is reported, not kept.
// @Tags         ledger-payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Reservation ID" format(uuid)
// @Param        Idempotency-Key header string false "Key that makes retries safe"
// @Param        request body PayReservationRequest true "Lump payment"
// @Success      200 {object} APIResponse[appledger.ReservationAllocation]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/reservations/{id}/payments [post]
func (h *LedgerHandler) PayReservation(c *gin.Context) {
	reservationID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	recordedBy, ok := h.recorder(c)
	if !ok {
		return
	}

	var req PayReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date")
		return
	}

	cmd := appledger.PayReservationCommand{
		ReservationID: reservationID,
		Amount:        req.Amount,
		Method:        ledger.PaymentMethod(req.Method),
		PaymentDate:   paymentDate,
		Observations:  req.Observations,
		RecordedBy:    recordedBy,
	}
	if req.ClientID != "" {
		clientID := uuid.MustParse(req.ClientID)
		cmd.ClientID = &clientID
	}
	for _, raw := range req.InstallmentIDs {
		cmd.InstallmentIDs = append(cmd.InstallmentIDs, uuid.MustParse(raw))
	}

	result, err := h.allocator.PayReservation(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetInstallment godoc
// @ID           getLedgerInstallment
// @Summary      Get an installment
// @Tags         ledger-installments
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Success      200 {object} APIResponse[InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/installments/{id} [get]
func (h *LedgerHandler) GetInstallment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	inst, err := h.query.GetInstallment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInstallmentResponse(inst))
}

// PayInstallment godoc
// @ID           payLedgerInstallment
// @Summary      Pay an installment
// @Description  Registers a payment against one installment and issues a receipt. Overpayment is rejected.
// @Tags         ledger-payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Param        Idempotency-Key header string false "Key that makes retries safe"
// @Param        request body PayInstallmentRequest true "Payment"
// @Success      201 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/installments/{id}/payments [post]
func (h *LedgerHandler) PayInstallment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	recordedBy, ok := h.recorder(c)
	if !ok {
		return
	}

	var req PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date")
		return
	}

	payment, err := h.allocator.PayInstallment(c.Request.Context(), appledger.PayInstallmentCommand{
		InstallmentID: id,
		Amount:        req.Amount,
		Method:        ledger.PaymentMethod(req.Method),
		PaymentDate:   paymentDate,
		Observations:  req.Observations,
		Extra:         req.Extra,
		RecordedBy:    recordedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(payment))
}

// UpdateInstallment godoc
// @ID           updateLedgerInstallment
// @Summary      Edit an installment
// @Description  Partial edit of due date, amount, status or observations. An amount edit keeps the account totals in step.
// @Tags         ledger-installments
// @Accept       json
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Param        request body UpdateInstallmentRequest true "Fields to change"
// @Success      200 {object} APIResponse[InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/installments/{id} [patch]
func (h *LedgerHandler) UpdateInstallment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	update := ledger.InstallmentUpdate{
		Amount:       req.Amount,
		Observations: req.Observations,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil || due == nil {
			h.BadRequest(c, "Invalid due_date")
			return
		}
		update.DueDate = due
	}
	if req.Status != nil {
		status := ledger.InstallmentStatus(*req.Status)
		update.Status = &status
	}

	inst, err := h.accounts.UpdateInstallment(c.Request.Context(), id, update)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInstallmentResponse(inst))
}

// ChangeInstallmentAmount godoc
// @ID           changeLedgerInstallmentAmount
// @Summary      Change an installment amount
// @Description  Sets a new amount and recomputes the account totals and status from its installments
// @Tags         ledger-installments
// @Accept       json
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Param        request body ChangeInstallmentAmountRequest true "New amount"
// @Success      200 {object} APIResponse[AccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/installments/{id}/amount [put]
func (h *LedgerHandler) ChangeInstallmentAmount(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ChangeInstallmentAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	account, err := h.reconciliation.OnInstallmentAmountEdited(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccountResponse(account))
}

// GetPayment godoc
// @ID           getLedgerPayment
// @Summary      Get a payment
// @Tags         ledger-payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/payments/{id} [get]
func (h *LedgerHandler) GetPayment(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.query.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(payment))
}

// DownloadReceipt godoc
// @ID           downloadLedgerReceipt
// @Summary      Download a payment receipt
// @Description  Renders the receipt of a payment as PDF
// @Tags         ledger-payments
// @Produce      application/pdf
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/payments/{id}/receipt.pdf [get]
func (h *LedgerHandler) DownloadReceipt(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	pdf, receiptNumber, err := h.receipts.Render(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, receiptNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
