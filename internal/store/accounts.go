package store

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// AccountRegistry maps bank|accountNumber keys to accounts and maintains
// each user's linked-account set, including the primary designation. The
// first account linked to a user is automatically primary.
type AccountRegistry struct {
	mu    sync.RWMutex
	byKey map[string]*domain.Account
}

func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{byKey: make(map[string]*domain.Account)}
}

// Open creates an account at the given bank with an opening balance and
// links it to its owner.
func (r *AccountRegistry) Open(number string, bank *domain.Bank, opening decimal.Decimal, owner *domain.User) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.AccountKey(bank.Name, number)
	if _, ok := r.byKey[key]; ok {
		return nil, domain.ErrDuplicateAccount
	}

	acc := domain.NewAccount(number, bank.Name, owner.ID, opening)
	r.byKey[key] = acc
	r.link(owner, acc)
	return acc, nil
}

// Link attaches an existing account to a user. The first linked account
// becomes the user's primary.
func (r *AccountRegistry) Link(user *domain.User, acc *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.link(user, acc)
}

func (r *AccountRegistry) link(user *domain.User, acc *domain.Account) {
	key := acc.Key()
	if len(user.LinkedAccounts) == 0 {
		acc.Primary = true
		user.PrimaryAccountKey = key
	}
	user.LinkedAccounts[key] = acc
	r.byKey[key] = acc
}

// PromoteToPrimary makes acc the user's primary account, demoting the
// previous one.
func (r *AccountRegistry) PromoteToPrimary(user *domain.User, acc *domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byKey[user.PrimaryAccountKey]; ok {
		old.Primary = false
	}
	acc.Primary = true
	user.PrimaryAccountKey = acc.Key()
}

// Lookup resolves an account by bank name and account number.
func (r *AccountRegistry) Lookup(bank, number string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byKey[domain.AccountKey(bank, number)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

// Owner returns the user id owning the account at bank|number. Payees
// may be addressed by bank account instead of id or phone.
func (r *AccountRegistry) Owner(bank, number string) (string, error) {
	acc, err := r.Lookup(bank, number)
	if err != nil {
		return "", err
	}
	return acc.UserID, nil
}

// Primary returns the user's primary account.
func (r *AccountRegistry) Primary(user *domain.User) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byKey[user.PrimaryAccountKey]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

// SetStatus freezes or reactivates an account.
func (r *AccountRegistry) SetStatus(bank, number string, status domain.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byKey[domain.AccountKey(bank, number)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Status = status
	return nil
}
