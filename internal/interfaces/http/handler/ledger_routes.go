package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tourops/backend/internal/infrastructure/auth"
	"github.com/tourops/backend/internal/interfaces/http/middleware"
	"github.com/tourops/backend/internal/interfaces/http/router"
)

// LedgerRoutes creates the route group for the installment ledger.
// Authentication runs globally; this group adds permission checks and makes
// every money movement idempotent.
func LedgerRoutes(h *LedgerHandler, idempotency gin.HandlerFunc) *router.DomainGroup {
	read := middleware.RequirePermission(auth.PermissionLedgerRead)
	write := middleware.RequirePermission(auth.PermissionLedgerWrite)
	admin := middleware.RequirePermission(auth.PermissionLedgerAdmin)

	group := router.NewDomainGroup("ledger", "/ledger")

	accounts := group.Group("accounts", "/accounts")
	accounts.POST("", write, idempotency, h.OpenAccount).Describe("Open an account with its installment plan")
	accounts.GET("/:id", read, h.GetAccount).Describe("Get an account")
	accounts.GET("/:id/summary", read, h.GetAccountSummary).Describe("Account summary")
	accounts.GET("/:id/installments", read, h.ListInstallments).Describe("List installments")
	accounts.GET("/:id/installments/outstanding", read, h.ListOutstanding).Describe("List outstanding installments")
	accounts.GET("/:id/payments", read, h.ListPayments).Describe("List payments")
	accounts.POST("/:id/deliveries", write, idempotency, h.RecordDelivery).Describe("Record a delivery")
	accounts.PATCH("/:id/status", admin, h.SetAccountStatus).Describe("Change account status")

	reservations := group.Group("reservations", "/reservations")
	reservations.GET("/:id/accounts", read, h.ListReservationAccounts).Describe("List reservation accounts")
	reservations.POST("/:id/payments", write, idempotency, h.PayReservation).Describe("Allocate a lump payment")

	installments := group.Group("installments", "/installments")
	installments.GET("/:id", read, h.GetInstallment).Describe("Get an installment")
	installments.POST("/:id/payments", write, idempotency, h.PayInstallment).Describe("Pay an installment")
	installments.PATCH("/:id", admin, h.UpdateInstallment).Describe("Edit an installment")
	installments.PUT("/:id/amount", admin, h.ChangeInstallmentAmount).Describe("Change amount and reconcile")

	payments := group.Group("payments", "/payments")
	payments.GET("/:id", read, h.GetPayment).Describe("Get a payment")
	payments.GET("/:id/receipt.pdf", read, h.DownloadReceipt).Describe("Download the receipt PDF")

	return group
}

// SystemRoutes creates the route group for system endpoints
func SystemRoutes(h *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.GET("/info", h.GetSystemInfo).Describe("Build and uptime")
	group.GET("/ping", h.Ping).Describe("Ping")
	return group
}
