// Package psp defines the payment-processor collaborator that settles
// transactions. The transfer engine treats it as an untrusted, possibly
// slow dependency: implementations may settle synchronously, leave a
// transaction pending for later polls, or fail transiently on poll.
package psp

import (
	"context"

	"github.com/punchamoorthee/payflow/internal/domain"
)

// Processor accepts transactions for settlement and answers status polls.
type Processor interface {
	// Submit hands the transaction to the processor and returns the
	// settlement status it could determine synchronously, which may
	// still be PENDING.
	Submit(ctx context.Context, tx *domain.Transaction) (domain.TransactionStatus, error)

	// PollStatus reports the current settlement status of a submitted
	// transaction. Errors are transient; callers retry.
	PollStatus(ctx context.Context, txID string) (domain.TransactionStatus, error)
}
