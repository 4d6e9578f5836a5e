// Package ledger defines the outbound port to the banking backend and the
// account-name resolution cache shared by its callers.
package ledger

import (
	"context"

	"kasboek/internal/core"
)

// Source is the banking backend the reports are built from.
type Source interface {
	// AccountByName returns the active account with the given description,
	// or an error wrapping core.ErrAccountNotFound.
	AccountByName(ctx context.Context, name string) (core.Account, error)

	// AccountByID returns the account with the given id.
	AccountByID(ctx context.Context, id int64) (core.Account, error)

	// ListPayments returns booked payments most-recent-first.
	ListPayments(ctx context.Context, accountID int64) ([]core.Payment, error)

	// ListScheduledPayments returns the account's standing orders.
	ListScheduledPayments(ctx context.Context, accountID int64) ([]core.ScheduledPayment, error)
}
