package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/punchamoorthee/payflow/internal/domain"
)

var errStillPending = errors.New("still pending")

// reconcile polls the processor until the transaction leaves PENDING or
// the deadline (measured from loop entry) expires. Transient poll
// errors are logged and retried; they never abort the loop on their
// own. Cancellation of the caller's context unwinds cleanly as a
// distinct error.
func (e *Engine) reconcile(ctx context.Context, tx *domain.Transaction) error {
	pollCtx, cancel := context.WithTimeout(ctx, e.pollDeadline)
	defer cancel()

	poll := func() error {
		reconcilePolls.Inc()
		status, err := e.processor.PollStatus(pollCtx, tx.ID)
		if err != nil {
			e.logger.Warn("settlement poll failed",
				"transaction_id", tx.ID,
				"error", err,
			)
			return err
		}
		if status == domain.StatusPending {
			return errStillPending
		}
		tx.SetStatus(status)
		return nil
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(e.pollInterval), pollCtx)
	err := backoff.Retry(poll, policy)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("reconciliation interrupted: %w", ctx.Err())
	}
	if pollCtx.Err() != nil {
		// Deadline reached with the transaction still PENDING. The
		// stored record keeps that status.
		return domain.ErrReconciliationTimeout
	}
	return err
}
