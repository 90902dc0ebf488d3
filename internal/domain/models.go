package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// UserStatus represents whether a user may participate in transfers.
type UserStatus string

const (
	UserActive      UserStatus = "ACTIVE"
	UserDeactivated UserStatus = "DEACTIVATED"
)

// AccountStatus represents whether an account may be debited or credited.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountFrozen AccountStatus = "FROZEN"
)

// TransactionStatus is the settlement state of a transaction.
// PENDING is the only non-terminal state.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// EntryType marks which side of a transfer a ledger entry records.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// User owns zero or more linked accounts, one of which is primary.
// LinkedAccounts and PrimaryAccountKey are mutated only by the account
// registry, under its lock.
type User struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Phone  string     `json:"phone"`
	Status UserStatus `json:"status"`

	LinkedAccounts    map[string]*Account `json:"-"`
	PrimaryAccountKey string              `json:"primary_account_key,omitempty"`
}

// NewUser returns an active user with no linked accounts.
func NewUser(id, name, phone string) *User {
	return &User{
		ID:             id,
		Name:           name,
		Phone:          phone,
		Status:         UserActive,
		LinkedAccounts: make(map[string]*Account),
	}
}

// Active reports whether the user may send or receive money.
func (u *User) Active() bool { return u.Status == UserActive }

// Bank is a registered bank with a server-availability flag. A transfer
// may not proceed through a bank whose server is down.
type Bank struct {
	Name string `json:"name"`
	Up   bool   `json:"up"`
}

// Transaction records one funds movement between two accounts. All
// fields except the status are immutable after construction; the status
// moves PENDING -> SUCCESS|FAILED exactly once and is terminal after
// that.
type Transaction struct {
	ID          string
	FromUserID  string
	ToUserID    string
	FromAccount string
	FromBank    string
	ToAccount   string
	ToBank      string
	Amount      decimal.Decimal
	CreatedAt   time.Time

	mu     sync.Mutex
	status TransactionStatus
}

// NewTransaction builds a PENDING transaction for a transfer from src to dst.
func NewTransaction(id string, payer *User, src *Account, payee *User, dst *Account, amount decimal.Decimal) *Transaction {
	return &Transaction{
		ID:          id,
		FromUserID:  payer.ID,
		ToUserID:    payee.ID,
		FromAccount: src.Number,
		FromBank:    src.Bank,
		ToAccount:   dst.Number,
		ToBank:      dst.Bank,
		Amount:      amount,
		CreatedAt:   time.Now(),
		status:      StatusPending,
	}
}

// Status returns the current settlement state.
func (t *Transaction) Status() TransactionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SetStatus advances the settlement state. Terminal states never change
// again; a write against a terminal status is ignored and reported false.
func (t *Transaction) SetStatus(s TransactionStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusPending {
		return false
	}
	t.status = s
	return true
}

// TransactionView is the serializable snapshot of a transaction.
type TransactionView struct {
	ID          string            `json:"id"`
	FromUserID  string            `json:"from_user_id"`
	ToUserID    string            `json:"to_user_id"`
	FromAccount string            `json:"from_account"`
	FromBank    string            `json:"from_bank"`
	ToAccount   string            `json:"to_account"`
	ToBank      string            `json:"to_bank"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// View snapshots the transaction, including its status at call time.
func (t *Transaction) View() TransactionView {
	return TransactionView{
		ID:          t.ID,
		FromUserID:  t.FromUserID,
		ToUserID:    t.ToUserID,
		FromAccount: t.FromAccount,
		FromBank:    t.FromBank,
		ToAccount:   t.ToAccount,
		ToBank:      t.ToBank,
		Amount:      t.Amount,
		Status:      t.Status(),
		CreatedAt:   t.CreatedAt,
	}
}

// LedgerEntry is one leg of a double-entry record, attributed to one
// user for one transaction. Status is a copy of the transaction status
// at recording time and is not rewritten by later settlement.
type LedgerEntry struct {
	UserID        string            `json:"user_id"`
	TransactionID string            `json:"transaction_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Type          EntryType         `json:"entry_type"`
	Status        TransactionStatus `json:"status"`
	Bank          string            `json:"bank"`
	AccountNumber string            `json:"account_number"`
	Counterparty  string            `json:"counterparty_user_id"`
	CreatedAt     time.Time         `json:"created_at"`
}
