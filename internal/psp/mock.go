package psp

import (
	"context"
	"errors"
	"sync"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// ErrUnknownTransaction is returned when a poll references a
// transaction the processor never saw.
var ErrUnknownTransaction = errors.New("psp: unknown transaction")

// Instant settles every submission synchronously with SUCCESS.
type Instant struct {
	mu     sync.Mutex
	status map[string]domain.TransactionStatus
}

func NewInstant() *Instant {
	return &Instant{status: make(map[string]domain.TransactionStatus)}
}

func (p *Instant) Submit(_ context.Context, tx *domain.Transaction) (domain.TransactionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status[tx.ID] = domain.StatusSuccess
	return domain.StatusSuccess, nil
}

func (p *Instant) PollStatus(_ context.Context, txID string) (domain.TransactionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.status[txID]
	if !ok {
		return "", ErrUnknownTransaction
	}
	return s, nil
}

// Deferred leaves every submission PENDING and resolves it to Final
// once it has been polled SettleAfter times. SettleAfter < 0 never
// resolves, which exercises the reconciliation deadline.
type Deferred struct {
	SettleAfter int
	Final       domain.TransactionStatus

	mu    sync.Mutex
	polls map[string]int
}

func NewDeferred(settleAfter int, final domain.TransactionStatus) *Deferred {
	return &Deferred{
		SettleAfter: settleAfter,
		Final:       final,
		polls:       make(map[string]int),
	}
}

func (p *Deferred) Submit(_ context.Context, tx *domain.Transaction) (domain.TransactionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls[tx.ID] = 0
	return domain.StatusPending, nil
}

func (p *Deferred) PollStatus(_ context.Context, txID string) (domain.TransactionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.polls[txID]
	if !ok {
		return "", ErrUnknownTransaction
	}
	p.polls[txID] = n + 1
	if p.SettleAfter >= 0 && n >= p.SettleAfter {
		return p.Final, nil
	}
	return domain.StatusPending, nil
}

// Flaky wraps another processor and fails every Nth poll with a
// transient error. Submissions pass through untouched.
type Flaky struct {
	Inner Processor
	N     int

	mu    sync.Mutex
	calls int
}

func (p *Flaky) Submit(ctx context.Context, tx *domain.Transaction) (domain.TransactionStatus, error) {
	return p.Inner.Submit(ctx, tx)
}

func (p *Flaky) PollStatus(ctx context.Context, txID string) (domain.TransactionStatus, error) {
	p.mu.Lock()
	p.calls++
	fail := p.N > 0 && p.calls%p.N == 0
	p.mu.Unlock()

	if fail {
		return "", errors.New("psp: status query failed")
	}
	return p.Inner.PollStatus(ctx, txID)
}
