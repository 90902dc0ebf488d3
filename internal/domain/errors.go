package domain

import "errors"

var (
	// ErrInactiveAccount covers both a deactivated user and a frozen
	// account; the transfer cannot be retried until reactivation.
	ErrInactiveAccount = errors.New("user or account is not active")

	// ErrInsufficientBalance means the payer cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBankUnavailable means the owning bank's server is down. Transient.
	ErrBankUnavailable = errors.New("bank server is down")

	ErrUnknownBank      = errors.New("bank not registered")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrDuplicatePhone   = errors.New("phone already linked to a user")
	ErrUserNotFound     = errors.New("user not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrSameAccount      = errors.New("cannot transfer to the same account")

	// ErrReconciliationTimeout means the settlement deadline passed with
	// the transaction still PENDING. The local balance mutation and
	// ledger entries already exist; the caller must treat the transfer
	// as submitted but unconfirmed, not re-submit it.
	ErrReconciliationTimeout = errors.New("transaction still pending at reconciliation deadline")
)
