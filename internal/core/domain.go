package core

import "errors"

const (
	Once    RecurrenceUnit = "ONCE"
	Daily   RecurrenceUnit = "DAILY"
	Weekly  RecurrenceUnit = "WEEKLY"
	Monthly RecurrenceUnit = "MONTHLY"
	Yearly  RecurrenceUnit = "YEARLY"
)

type (
	// RecurrenceUnit tags how often a scheduled payment repeats.
	RecurrenceUnit string

	// Account is a monetary account as resolved from the ledger source.
	Account struct {
		ID          int64
		Description string
		Balance     Money
	}

	// Payment is a single booked transaction. CreatedAt is kept as the raw
	// ledger timestamp string; parsing happens where a time value is needed
	// so that malformed input surfaces as ErrBadTimestamp, not a zero time.
	Payment struct {
		CreatedAt    string
		Amount       Money
		Description  string
		Counterparty string
	}

	// ScheduledPayment is a standing order. End is empty for open-ended
	// recurring schedules; for ONCE schedules the occurrence date is Start.
	ScheduledPayment struct {
		Amount     Money
		Recurrence RecurrenceUnit
		Start      string
		End        string
	}
)

var (
	ErrAccountNotFound  = errors.New("no active account with that name")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrBadTimestamp     = errors.New("malformed timestamp")
	ErrNoAmount         = errors.New("no digits in amount")
)

// IsOnce reports whether the schedule fires a single time.
func (u RecurrenceUnit) IsOnce() bool { return u == Once }

// Outgoing reports whether the payment took money out of the account.
func (p Payment) Outgoing() bool { return p.Amount.Sign() < 0 }
