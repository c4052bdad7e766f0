// Package ledger is the only writer of a user's points balance and
// completion counters. It never opens a transaction of its own: every call
// runs on the storage.Tx of the operation that caused it, and every balance
// change is journaled in the same transaction.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 50

type Ledger struct {
	store storage.Provider
	clock calendar.Clock
}

func New(store storage.Provider, clock calendar.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// Credit adds amount to the user's balance and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, tx storage.Tx, userID string, amount int, ref string) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit %d: %w", amount, apperrors.ErrInvalidAmount)
	}

	balance, _, err := tx.AdjustPoints(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	if err := l.journal(ctx, tx, userID, constants.TransactionEarn, amount, balance, ref); err != nil {
		return 0, err
	}

	logger.Debug("Points credited", "user", userID, "amount", amount, "balance", balance, "ref", ref)
	return balance, nil
}

// Debit removes amount from the user's balance and returns the new balance.
// When the balance is smaller than amount nothing changes and the error
// wraps ErrInsufficientBalance.
func (l *Ledger) Debit(ctx context.Context, tx storage.Tx, userID string, amount int, ref string) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit %d: %w", amount, apperrors.ErrInvalidAmount)
	}

	balance, ok, err := tx.AdjustPoints(ctx, userID, -amount)
	if err != nil {
		return 0, err
	}
	if !ok {
		return balance, fmt.Errorf("debit %d from balance %d: %w", amount, balance, apperrors.ErrInsufficientBalance)
	}
	if err := l.journal(ctx, tx, userID, constants.TransactionSpend, amount, balance, ref); err != nil {
		return 0, err
	}

	logger.Debug("Points debited", "user", userID, "amount", amount, "balance", balance, "ref", ref)
	return balance, nil
}

// RecordCompletion bumps the user's completed task counter.
func (l *Ledger) RecordCompletion(ctx context.Context, tx storage.Tx, userID string) error {
	return tx.IncrementCompletedTasks(ctx, userID)
}

// RecordSession bumps the user's finished focus session counter.
func (l *Ledger) RecordSession(ctx context.Context, tx storage.Tx, userID string) error {
	return tx.IncrementPomodoroSessions(ctx, userID)
}

// History lists journal rows, newest first.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := l.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.store.GetTransactions(ctx, userID, limit)
}

// zero amounts move nothing and are not journaled
func (l *Ledger) journal(ctx context.Context, tx storage.Tx, userID string, kind constants.TransactionKind, amount, balance int, ref string) error {
	if amount == 0 {
		return nil
	}
	return tx.AddTransaction(ctx, models.PointTransaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balance,
		Reference:    ref,
		CreatedAt:    l.clock.Now(),
	})
}
