package errors

import "errors"

// Sentinel errors shared by the ledger components. Callers wrap them with
// fmt.Errorf("...: %w", ...) and match with errors.Is.
var (
	// ErrNotFound is returned when a referenced record is missing or is not
	// owned by the calling user.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance is returned by a debit larger than the balance.
	ErrInsufficientBalance = errors.New("insufficient points balance")
	// ErrAlreadyClaimed is returned when a reward has been claimed before.
	ErrAlreadyClaimed = errors.New("reward already claimed")
	// ErrAlreadyCompleted is returned when a task has already been completed.
	ErrAlreadyCompleted = errors.New("task already completed")
	// ErrGenerationFailed is returned when the summary text could not be generated.
	ErrGenerationFailed = errors.New("summary generation failed")
	// ErrInvalidAmount is returned for negative point amounts.
	ErrInvalidAmount = errors.New("point amount must not be negative")
	// ErrTaskCompleted is returned when an operation would move a task out of
	// the completed state or change its awarded points.
	ErrTaskCompleted = errors.New("task is completed and can no longer change")
	// ErrRewardInactive is returned when claiming a deactivated reward.
	ErrRewardInactive = errors.New("reward is not active")
	// ErrValidation is returned for invalid input records.
	ErrValidation = errors.New("validation failed")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
