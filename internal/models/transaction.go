package models

import (
	"time"

	"github.com/julianstephens/neurozen/internal/constants"
)

// PointTransaction is one journal row written alongside every balance change.
type PointTransaction struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"user_id"`
	Kind         constants.TransactionKind `json:"kind"`
	Amount       int                       `json:"amount"`
	BalanceAfter int                       `json:"balance_after"`
	Reference    string                    `json:"reference,omitempty"` // task or reward id
	CreatedAt    time.Time                 `json:"created_at"`
}
