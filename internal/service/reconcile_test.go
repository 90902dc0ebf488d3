package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/psp"
)

func fastConfig() Config {
	return Config{PollInterval: time.Millisecond, PollDeadline: time.Second}
}

func TestReconcileResolvesPendingSettlement(t *testing.T) {
	f := newFixture(t, psp.NewDeferred(2, domain.StatusSuccess), fastConfig())

	tx, err := f.transfer(200)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if tx.Status() != domain.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS after reconciliation", tx.Status())
	}
	if !f.a1.Balance().Equal(decimal.NewFromInt(800)) {
		t.Errorf("payer balance = %s, want 800", f.a1.Balance())
	}
}

func TestReconcileFailedSettlementKeepsBalances(t *testing.T) {
	f := newFixture(t, psp.NewDeferred(1, domain.StatusFailed), fastConfig())

	tx, err := f.transfer(200)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if tx.Status() != domain.StatusFailed {
		t.Fatalf("status = %s, want FAILED", tx.Status())
	}
	// The optimistic debit is not reversed on failure.
	if !f.a1.Balance().Equal(decimal.NewFromInt(800)) || !f.a2.Balance().Equal(decimal.NewFromInt(700)) {
		t.Errorf("balances = %s/%s; failed settlement must not reverse the local mutation",
			f.a1.Balance(), f.a2.Balance())
	}
}

func TestReconciliationTimeout(t *testing.T) {
	f := newFixture(t, psp.NewDeferred(-1, domain.StatusSuccess), Config{
		PollInterval: time.Millisecond,
		PollDeadline: 30 * time.Millisecond,
	})

	tx, err := f.transfer(200)
	if !errors.Is(err, domain.ErrReconciliationTimeout) {
		t.Fatalf("err = %v, want ErrReconciliationTimeout", err)
	}
	if tx == nil {
		t.Fatal("timed-out transfer must still return the transaction")
	}
	if tx.Status() != domain.StatusPending {
		t.Errorf("status = %s, want PENDING in the stored record", tx.Status())
	}
	// The local effects already happened and stay visible.
	if !f.a1.Balance().Equal(decimal.NewFromInt(800)) || !f.a2.Balance().Equal(decimal.NewFromInt(700)) {
		t.Errorf("balances = %s/%s, want the optimistic mutation to remain", f.a1.Balance(), f.a2.Balance())
	}
	if len(f.recorder.Statement("U1", ledger.Filter{})) != 1 {
		t.Error("ledger entry missing for the unconfirmed transfer")
	}
}

func TestReconcileCancellation(t *testing.T) {
	f := newFixture(t, psp.NewDeferred(-1, domain.StatusSuccess), Config{
		PollInterval: time.Millisecond,
		PollDeadline: 10 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := f.engine.Transfer(ctx, f.alice, f.a1, f.bob, f.a2, decimal.NewFromInt(200))
	if err == nil {
		t.Fatal("cancelled reconciliation must not report success")
	}
	if errors.Is(err, domain.ErrReconciliationTimeout) {
		t.Errorf("err = %v; cancellation must surface distinctly from the deadline", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want wrapped context.Canceled", err)
	}
}

func TestReconcileToleratesTransientPollErrors(t *testing.T) {
	proc := &psp.Flaky{Inner: psp.NewDeferred(3, domain.StatusSuccess), N: 2}
	f := newFixture(t, proc, fastConfig())

	tx, err := f.transfer(200)
	if err != nil {
		t.Fatalf("transfer: %v; transient poll errors must not abort the loop", err)
	}
	if tx.Status() != domain.StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", tx.Status())
	}
}
