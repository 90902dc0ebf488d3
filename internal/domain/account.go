package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Account is a mutable balance cell. The balance is only ever mutated
// while the account's lock is held; the transfer engine acquires the
// locks of both sides of a transfer in a fixed global order (see
// service.Engine). The lock lives on the account because the balance is
// the contended resource, not the service above it.
type Account struct {
	Number  string        `json:"number"`
	Bank    string        `json:"bank"`
	UserID  string        `json:"user_id"`
	Status  AccountStatus `json:"status"`
	Primary bool          `json:"primary"`

	mu      sync.Mutex
	balance decimal.Decimal
}

// NewAccount returns an active account holding the opening balance.
func NewAccount(number, bank, userID string, opening decimal.Decimal) *Account {
	return &Account{
		Number:  number,
		Bank:    bank,
		UserID:  userID,
		Status:  AccountActive,
		balance: opening,
	}
}

// AccountKey is the system-wide account identifier. Account numbers are
// unique per bank only, so the bank name is part of the key. The key is
// also the comparator for transfer lock ordering.
func AccountKey(bank, number string) string { return bank + "|" + number }

// Key returns the account's system-wide identifier.
func (a *Account) Key() string { return AccountKey(a.Bank, a.Number) }

// Active reports whether the account may participate in transfers.
func (a *Account) Active() bool { return a.Status == AccountActive }

// Lock acquires the account's balance lock. Callers moving money
// between two accounts must lock both in ascending Key() order.
func (a *Account) Lock() { a.mu.Lock() }

// Unlock releases the balance lock.
func (a *Account) Unlock() { a.mu.Unlock() }

// CanCover reports whether the balance covers amount. Only meaningful
// while the account lock is held.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.balance.GreaterThanOrEqual(amount)
}

// Debit subtracts amount from the balance. The caller must hold the
// account lock and must have verified CanCover first; the balance is
// never allowed to go negative.
func (a *Account) Debit(amount decimal.Decimal) {
	a.balance = a.balance.Sub(amount)
}

// Credit adds amount to the balance. The caller must hold the account lock.
func (a *Account) Credit(amount decimal.Decimal) {
	a.balance = a.balance.Add(amount)
}

// Balance takes the lock and returns the current balance. Do not call
// it from a caller that already holds the lock.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}
