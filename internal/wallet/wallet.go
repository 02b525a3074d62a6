// Package wallet tracks a viewer's in-memory coin balance for one session.
package wallet

import (
	"errors"
	"sync"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount is returned for zero or negative amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

// Wallet holds a single viewer's coin balance. The balance never goes
// negative; a failed debit leaves it untouched.
type Wallet struct {
	mu      sync.Mutex
	balance int64
}

// New creates a wallet with the given opening balance
func New(opening int64) *Wallet {
	if opening < 0 {
		opening = 0
	}
	return &Wallet{balance: opening}
}

// Balance returns the current balance
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// TryDebit atomically checks and deducts amount from the balance.
// On ErrInsufficientFunds the balance is unchanged.
func (w *Wallet) TryDebit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance < amount {
		return ErrInsufficientFunds
	}
	w.balance -= amount
	return nil
}

// Credit adds amount to the balance
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance += amount
	return nil
}
