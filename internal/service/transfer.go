package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/punchamoorthee/payflow/internal/domain"
	"github.com/punchamoorthee/payflow/internal/ledger"
	"github.com/punchamoorthee/payflow/internal/psp"
	"github.com/punchamoorthee/payflow/internal/store"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultPollDeadline = 120 * time.Second
)

// Config tunes the reconciliation loop. Zero values fall back to the
// production defaults (5s poll interval, 120s deadline).
type Config struct {
	PollInterval time.Duration
	PollDeadline time.Duration
}

// Engine orchestrates one funds transfer end to end: validation,
// ordered locking of the two accounts, balance mutation, processor
// submission, ledger recording, and reconciliation when settlement is
// not known synchronously.
type Engine struct {
	banks     *store.BankDirectory
	recorder  *ledger.Recorder
	processor psp.Processor
	logger    *slog.Logger

	pollInterval time.Duration
	pollDeadline time.Duration
}

func NewEngine(banks *store.BankDirectory, rec *ledger.Recorder, proc psp.Processor, logger *slog.Logger, cfg Config) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollDeadline <= 0 {
		cfg.PollDeadline = defaultPollDeadline
	}
	return &Engine{
		banks:        banks,
		recorder:     rec,
		processor:    proc,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		pollDeadline: cfg.PollDeadline,
	}
}

// Transfer moves amount from the payer's src account to the payee's dst
// account. On success the returned transaction is settled; on
// ErrReconciliationTimeout it is returned still PENDING, with the
// balance mutation and ledger entries already in place ("submitted but
// unconfirmed"). Validation failures before locking leave no observable
// mutation.
//
// Funds move locally before the processor is contacted (optimistic
// debit); a later FAILED settlement does not reverse the balances.
func (e *Engine) Transfer(ctx context.Context, payer *domain.User, src *domain.Account, payee *domain.User, dst *domain.Account, amount decimal.Decimal) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if src.Key() == dst.Key() {
		return nil, domain.ErrSameAccount
	}
	if !payer.Active() || !payee.Active() {
		return nil, domain.ErrInactiveAccount
	}
	if !src.Active() || !dst.Active() {
		return nil, domain.ErrInactiveAccount
	}
	if _, err := e.banks.Resolve(src.Bank); err != nil {
		return nil, err
	}
	if _, err := e.banks.Resolve(dst.Bank); err != nil {
		return nil, err
	}
	if src.Balance().LessThan(amount) {
		return nil, domain.ErrInsufficientBalance
	}

	// Lock both accounts in ascending key order. Every transfer uses
	// the same total order regardless of direction, so two transfers
	// moving money between the same pair in opposite directions cannot
	// form a circular wait.
	first, second := src, dst
	if second.Key() < first.Key() {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	// The balance may have moved between the precheck and lock
	// acquisition.
	if !src.CanCover(amount) {
		transfersTotal.WithLabelValues(outcomeRejected).Inc()
		return nil, domain.ErrInsufficientBalance
	}

	src.Debit(amount)
	dst.Credit(amount)

	tx := domain.NewTransaction(uuid.NewString(), payer, src, payee, dst, amount)

	status, err := e.processor.Submit(ctx, tx)
	if err != nil {
		// The processor has the transaction or lost it; either way the
		// local debit stands and reconciliation will find out.
		e.logger.Warn("processor submission failed",
			"transaction_id", tx.ID,
			"error", err,
		)
	} else {
		tx.SetStatus(status)
	}

	// Recorded regardless of outcome so far; the entries snapshot the
	// status current at this instant.
	e.recorder.Record(tx)

	if tx.Status() == domain.StatusPending {
		if err := e.reconcile(ctx, tx); err != nil {
			transfersTotal.WithLabelValues(outcomeUnconfirmed).Inc()
			return tx, err
		}
	}

	e.logger.Info("transfer settled",
		"transaction_id", tx.ID,
		"from", src.Key(),
		"to", dst.Key(),
		"amount", amount.String(),
		"status", string(tx.Status()),
	)
	transfersTotal.WithLabelValues(string(tx.Status())).Inc()
	return tx, nil
}
