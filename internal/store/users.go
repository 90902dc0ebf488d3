package store

import (
	"sync"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// UserDirectory indexes users by id and by phone number. Phone numbers
// are unique system-wide.
type UserDirectory struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byPhone map[string]*domain.User
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		byID:    make(map[string]*domain.User),
		byPhone: make(map[string]*domain.User),
	}
}

// Create registers a new active user.
func (d *UserDirectory) Create(id, name, phone string) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byPhone[phone]; ok {
		return nil, domain.ErrDuplicatePhone
	}
	u := domain.NewUser(id, name, phone)
	d.byID[id] = u
	d.byPhone[phone] = u
	return u, nil
}

func (d *UserDirectory) ByID(id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (d *UserDirectory) ByPhone(phone string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byPhone[phone]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// SetStatus activates or deactivates a user.
func (d *UserDirectory) SetStatus(id string, status domain.UserStatus) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = status
	return nil
}
