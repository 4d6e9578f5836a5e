// Package memory is an in-process ledger source used by tests and the
// "memory" backend mode for local development without bank credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kasboek/internal/core"
	"kasboek/internal/ledger"
)

var _ ledger.Source = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	accounts  []core.Account
	payments  map[int64][]core.Payment
	scheduled map[int64][]core.ScheduledPayment
}

func New() *Store {
	return &Store{
		payments:  make(map[int64][]core.Payment),
		scheduled: make(map[int64][]core.ScheduledPayment),
	}
}

// Seed returns a store pre-filled with a plausible demo ledger so the
// server renders meaningful pages out of the box.
func Seed() *Store {
	s := New()
	s.AddAccount(core.Account{ID: 1, Description: "kasboek", Balance: core.FromCents("EUR", 123456)})
	s.AddAccount(core.Account{ID: 2, Description: "billpay", Balance: core.FromCents("EUR", 50000)})
	s.AddPayments(1,
		core.Payment{CreatedAt: "2024-05-20 12:30:00.000000", Amount: core.FromCents("EUR", -500), Description: "lunch", Counterparty: "Cafe"},
		core.Payment{CreatedAt: "2024-05-19 09:00:00.000000", Amount: core.FromCents("EUR", 1000), Description: "gift", Counterparty: "Friend"},
	)
	s.AddScheduled(1,
		core.ScheduledPayment{Amount: core.FromCents("EUR", -800), Recurrence: core.Monthly, Start: "2023-01-01 00:00:00.000000"},
	)
	return s
}

func (s *Store) AddAccount(a core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, a)
}

func (s *Store) AddPayments(accountID int64, payments ...core.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[accountID] = append(s.payments[accountID], payments...)
}

func (s *Store) AddScheduled(accountID int64, scheduled ...core.ScheduledPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[accountID] = append(s.scheduled[accountID], scheduled...)
}

func (s *Store) AccountByName(_ context.Context, name string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Description == name {
			return a, nil
		}
	}
	return core.Account{}, fmt.Errorf("account %q: %w", name, core.ErrAccountNotFound)
}

func (s *Store) AccountByID(_ context.Context, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Account{}, fmt.Errorf("account id %d: %w", id, core.ErrAccountNotFound)
}

func (s *Store) ListPayments(_ context.Context, accountID int64) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Payment(nil), s.payments[accountID]...), nil
}

func (s *Store) ListScheduledPayments(_ context.Context, accountID int64) ([]core.ScheduledPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ScheduledPayment(nil), s.scheduled[accountID]...), nil
}
