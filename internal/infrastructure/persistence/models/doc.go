// Package models contains GORM persistence models for the ledger tables.
// Domain entities stay free of ORM tags; repositories convert between the
// two with ToDomain and FromDomain.
//
// Tables:
// - accounts: one row per client per reservation
// - installments: scheduled slices of an account, unique (account_id, sequence_number)
// - payments: append-only receipts, unique installment_id and receipt_number
// - receipt_counters: named monotonic counters for receipt numbering
package models
