package psp

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
)

func newTx(id string) *domain.Transaction {
	payer := domain.NewUser("U1", "Alice", "999")
	payee := domain.NewUser("U2", "Bob", "888")
	src := domain.NewAccount("A1", "HDFC", "U1", decimal.NewFromInt(100))
	dst := domain.NewAccount("A2", "ICICI", "U2", decimal.NewFromInt(100))
	return domain.NewTransaction(id, payer, src, payee, dst, decimal.NewFromInt(10))
}

func TestInstantSettlesSynchronously(t *testing.T) {
	p := NewInstant()
	ctx := context.Background()

	status, err := p.Submit(ctx, newTx("tx-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if status != domain.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", status)
	}

	polled, err := p.PollStatus(ctx, "tx-1")
	if err != nil || polled != domain.StatusSuccess {
		t.Errorf("poll = (%s, %v), want (SUCCESS, nil)", polled, err)
	}

	if _, err := p.PollStatus(ctx, "missing"); !errors.Is(err, ErrUnknownTransaction) {
		t.Errorf("poll of unknown tx: %v", err)
	}
}

func TestDeferredResolvesAfterPolls(t *testing.T) {
	p := NewDeferred(2, domain.StatusSuccess)
	ctx := context.Background()

	status, err := p.Submit(ctx, newTx("tx-1"))
	if err != nil || status != domain.StatusPending {
		t.Fatalf("submit = (%s, %v), want (PENDING, nil)", status, err)
	}

	for i := 0; i < 2; i++ {
		status, err = p.PollStatus(ctx, "tx-1")
		if err != nil || status != domain.StatusPending {
			t.Fatalf("poll %d = (%s, %v), want still PENDING", i, status, err)
		}
	}
	status, err = p.PollStatus(ctx, "tx-1")
	if err != nil || status != domain.StatusSuccess {
		t.Errorf("final poll = (%s, %v), want (SUCCESS, nil)", status, err)
	}
}

func TestDeferredNeverResolves(t *testing.T) {
	p := NewDeferred(-1, domain.StatusSuccess)
	ctx := context.Background()
	p.Submit(ctx, newTx("tx-1"))

	for i := 0; i < 10; i++ {
		status, err := p.PollStatus(ctx, "tx-1")
		if err != nil || status != domain.StatusPending {
			t.Fatalf("poll %d = (%s, %v), want perpetual PENDING", i, status, err)
		}
	}
}

func TestFlakyFailsEveryNthPoll(t *testing.T) {
	p := &Flaky{Inner: NewInstant(), N: 2}
	ctx := context.Background()
	p.Submit(ctx, newTx("tx-1"))

	if _, err := p.PollStatus(ctx, "tx-1"); err != nil {
		t.Fatalf("poll 1 should pass through: %v", err)
	}
	if _, err := p.PollStatus(ctx, "tx-1"); err == nil {
		t.Fatal("poll 2 should fail transiently")
	}
	if _, err := p.PollStatus(ctx, "tx-1"); err != nil {
		t.Fatalf("poll 3 should pass through: %v", err)
	}
}
