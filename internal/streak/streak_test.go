package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/storagetest"
)

func TestEvaluate(t *testing.T) {
	today := calendar.Day("2024-05-10")
	yesterday := today.AddDays(-1)

	tests := []struct {
		name        string
		state       State
		activityDay calendar.Day
		want        State
		changed     bool
	}{
		{
			name:        "first activity ever",
			state:       State{},
			activityDay: today,
			want:        State{Days: 1, Longest: 1, LastActive: today},
			changed:     true,
		},
		{
			name:        "continues from yesterday",
			state:       State{Days: 3, Longest: 3, LastActive: yesterday},
			activityDay: today,
			want:        State{Days: 4, Longest: 4, LastActive: today},
			changed:     true,
		},
		{
			name:        "gap resets to one",
			state:       State{Days: 7, Longest: 9, LastActive: today.AddDays(-3)},
			activityDay: today,
			want:        State{Days: 1, Longest: 9, LastActive: today},
			changed:     true,
		},
		{
			name:        "same day is idempotent",
			state:       State{Days: 2, Longest: 5, LastActive: today},
			activityDay: today,
			want:        State{Days: 2, Longest: 5, LastActive: today},
		},
		{
			name:        "activity on another day is ignored",
			state:       State{Days: 2, Longest: 2, LastActive: yesterday},
			activityDay: yesterday,
			want:        State{Days: 2, Longest: 2, LastActive: yesterday},
		},
		{
			name:        "continuation beats longest",
			state:       State{Days: 5, Longest: 5, LastActive: yesterday},
			activityDay: today,
			want:        State{Days: 6, Longest: 6, LastActive: today},
			changed:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.state, tt.activityDay, today)
			if got.State != tt.want || got.Changed != tt.changed {
				t.Errorf("Evaluate() = %+v, want %+v (changed=%v)", got, tt.want, tt.changed)
			}
		})
	}
}

func TestEvaluateTwiceSameDay(t *testing.T) {
	today := calendar.Day("2024-05-10")
	first := Evaluate(State{Days: 1, LastActive: today.AddDays(-1)}, today, today)
	second := Evaluate(first.State, today, today)
	if second.Changed || second.State != first.State {
		t.Errorf("second evaluation changed state: %+v -> %+v", first.State, second.State)
	}
}

func TestCheckAppliesLatestCompletion(t *testing.T) {
	ctx := context.Background()
	store := storagetest.OpenSQLite(t)
	tracker := NewTracker(store)
	clock := calendar.Fixed(time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC))

	u := storagetest.CreateUser(t, store, 0)
	err := store.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
		return tx.SaveStreak(ctx, u.ID, 1, 1, clock.Today().AddDays(-1))
	})
	if err != nil {
		t.Fatal(err)
	}

	r, err := tracker.Check(ctx, u.ID, clock)
	if err != nil {
		t.Fatal(err)
	}
	if r.Changed || r.Days != 1 {
		t.Errorf("no completions: Check() = %+v, want unchanged streak 1", r)
	}

	task := storagetest.CreateTask(t, store, u.ID, 10)
	err = store.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
		_, err := tx.MarkTaskCompleted(ctx, task.ID, clock.Now())
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if r, err = tracker.Check(ctx, u.ID, clock); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := store.GetUser(ctx, u.ID)
	if got.StreakDays != 2 || got.LastActiveDate != clock.Today() || got.LongestStreak != 2 {
		t.Errorf("after checks user = %+v, want streak 2 active today", got)
	}
}

func TestCheckUnknownUser(t *testing.T) {
	store := storagetest.OpenSQLite(t)
	_, err := NewTracker(store).Check(context.Background(), "missing", calendar.Fixed(time.Now()))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Check() error = %v, want ErrNotFound", err)
	}
}
