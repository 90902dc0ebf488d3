package store

import (
	"sync"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// BankDirectory maps bank names to their registration, including the
// server-availability flag checked before every transfer.
type BankDirectory struct {
	mu    sync.RWMutex
	banks map[string]*domain.Bank
}

func NewBankDirectory() *BankDirectory {
	return &BankDirectory{banks: make(map[string]*domain.Bank)}
}

// Register adds or replaces a bank with the given availability.
func (d *BankDirectory) Register(name string, up bool) *domain.Bank {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := &domain.Bank{Name: name, Up: up}
	d.banks[name] = b
	return b
}

// Resolve returns the bank only if it is registered and its server is
// up. A transfer may not proceed through a bank that is down.
func (d *BankDirectory) Resolve(name string) (*domain.Bank, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.banks[name]
	if !ok {
		return nil, domain.ErrUnknownBank
	}
	if !b.Up {
		return nil, domain.ErrBankUnavailable
	}
	return b, nil
}

// SetAvailability flips a bank's server flag.
func (d *BankDirectory) SetAvailability(name string, up bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.banks[name]
	if !ok {
		return domain.ErrUnknownBank
	}
	b.Up = up
	return nil
}
