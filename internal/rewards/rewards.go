// Package rewards redeems points for user-defined rewards. A reward is
// claimed at most once and its price is debited in the same transaction
// that flags it.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// Outcome is the business result of a claim attempt.
type Outcome string

const (
	Claimed             Outcome = "claimed"
	AlreadyClaimed      Outcome = "already_claimed"
	InsufficientBalance Outcome = "insufficient_balance"
)

// Result carries the outcome and the balance after the attempt.
type Result struct {
	Outcome Outcome
	Balance int
}

// errClaimLost rolls back a debit when the reward was flagged concurrently.
var errClaimLost = errors.New("reward claimed concurrently")

type Service struct {
	store  storage.Provider
	ledger *ledger.Ledger
}

func NewService(store storage.Provider, l *ledger.Ledger) *Service {
	return &Service{store: store, ledger: l}
}

// Claim redeems the reward. Failing outcomes are returned as values and
// leave the balance and the reward untouched.
func (s *Service) Claim(ctx context.Context, clock calendar.Clock, userID, rewardID string) (Result, error) {
	var res Result
	err := s.store.WithUserTx(ctx, userID, func(tx storage.Tx) error {
		reward, err := tx.GetReward(ctx, userID, rewardID)
		if err != nil {
			return err
		}
		if reward.IsClaimed {
			return s.settle(ctx, tx, userID, AlreadyClaimed, &res)
		}
		if !reward.IsActive {
			return fmt.Errorf("claim reward %s: %w", rewardID, apperrors.ErrRewardInactive)
		}

		balance, err := s.ledger.Debit(ctx, tx, userID, reward.Points, reward.ID)
		if errors.Is(err, apperrors.ErrInsufficientBalance) {
			res = Result{Outcome: InsufficientBalance, Balance: balance}
			return nil
		}
		if err != nil {
			return err
		}

		ok, err := tx.MarkRewardClaimed(ctx, reward.ID, clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return errClaimLost
		}

		res = Result{Outcome: Claimed, Balance: balance}
		return nil
	})

	if errors.Is(err, errClaimLost) {
		u, gerr := s.store.GetUser(ctx, userID)
		if gerr != nil {
			return Result{}, gerr
		}
		return Result{Outcome: AlreadyClaimed, Balance: u.Points}, nil
	}
	if err != nil {
		return Result{}, err
	}

	logger.Info("Reward claim", "user", userID, "reward", rewardID, "outcome", res.Outcome, "balance", res.Balance)
	return res, nil
}

func (s *Service) settle(ctx context.Context, tx storage.Tx, userID string, outcome Outcome, res *Result) error {
	u, err := tx.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	*res = Result{Outcome: outcome, Balance: u.Points}
	return nil
}

// Create stores a new active reward priced at points.
func (s *Service) Create(ctx context.Context, clock calendar.Clock, userID, title, description string, points int) (models.Reward, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return models.Reward{}, err
	}
	r := models.Reward{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Points:      points,
		IsActive:    true,
		CreatedAt:   clock.Now(),
	}
	if err := r.Validate(); err != nil {
		return models.Reward{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.store.AddReward(ctx, r); err != nil {
		return models.Reward{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Reward, error) {
	return s.store.GetRewards(ctx, userID)
}
