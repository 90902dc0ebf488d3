package ledger

import (
	"sync"
	"time"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// Recorder keeps double-entry histories: per-user ledger entries and a
// per-account transaction index. Entries are append-only and returned
// in insertion order.
type Recorder struct {
	mu        sync.RWMutex
	byUser    map[string][]*domain.LedgerEntry
	byAccount map[string][]*domain.Transaction
}

func NewRecorder() *Recorder {
	return &Recorder{
		byUser:    make(map[string][]*domain.LedgerEntry),
		byAccount: make(map[string][]*domain.Transaction),
	}
}

// Record appends a DEBIT entry under the payer and a CREDIT entry under
// the payee, each carrying that side's bank+account snapshot and the
// counterparty user id. The entries copy the transaction status as of
// now; a later settlement does not rewrite them.
func (r *Recorder) Record(tx *domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	srcKey := domain.AccountKey(tx.FromBank, tx.FromAccount)
	dstKey := domain.AccountKey(tx.ToBank, tx.ToAccount)
	r.byAccount[srcKey] = append(r.byAccount[srcKey], tx)
	r.byAccount[dstKey] = append(r.byAccount[dstKey], tx)

	status := tx.Status()
	r.byUser[tx.FromUserID] = append(r.byUser[tx.FromUserID], &domain.LedgerEntry{
		UserID:        tx.FromUserID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Type:          domain.EntryDebit,
		Status:        status,
		Bank:          tx.FromBank,
		AccountNumber: tx.FromAccount,
		Counterparty:  tx.ToUserID,
		CreatedAt:     tx.CreatedAt,
	})
	r.byUser[tx.ToUserID] = append(r.byUser[tx.ToUserID], &domain.LedgerEntry{
		UserID:        tx.ToUserID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Type:          domain.EntryCredit,
		Status:        status,
		Bank:          tx.ToBank,
		AccountNumber: tx.ToAccount,
		Counterparty:  tx.FromUserID,
		CreatedAt:     tx.CreatedAt,
	})
}

// Filter narrows a statement. Zero values match everything.
type Filter struct {
	Counterparty string
	Type         domain.EntryType
	Bank         string
	From         time.Time
	To           time.Time
}

func (f Filter) matches(e *domain.LedgerEntry) bool {
	if f.Counterparty != "" && e.Counterparty != f.Counterparty {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Bank != "" && e.Bank != f.Bank {
		return false
	}
	if !f.From.IsZero() && e.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// Statement returns the user's ledger entries in insertion order,
// narrowed by the filter. The filter walks the user's own sequence;
// there are no side indexes at this scale.
func (r *Recorder) Statement(userID string, f Filter) []*domain.LedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range r.byUser[userID] {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// AccountHistory returns every transaction touching the account, in
// insertion order.
func (r *Recorder) AccountHistory(bank, number string) []*domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byAccount[domain.AccountKey(bank, number)]
	out := make([]*domain.Transaction, len(src))
	copy(out, src)
	return out
}
