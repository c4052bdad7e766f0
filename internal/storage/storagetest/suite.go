package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// RunProviderSuite exercises a Provider implementation. open is called once
// per subtest.
func RunProviderSuite(t *testing.T, open func(t *testing.T) storage.Provider) {
	ctx := context.Background()

	t.Run("UserDefaults", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 0)

		got, err := p.GetUserByUsername(ctx, u.Username)
		if err != nil {
			t.Fatalf("GetUserByUsername: %v", err)
		}
		if got.ID != u.ID || got.LastActiveDate != "" {
			t.Errorf("unexpected user %+v", got)
		}

		cats, err := p.GetCategories(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(cats) != len(constants.DefaultCategories) {
			t.Fatalf("got %d categories, want %d", len(cats), len(constants.DefaultCategories))
		}
		for i, c := range cats {
			if c.Name != constants.DefaultCategories[i] || !c.IsDefault {
				t.Errorf("category %d = %+v", i, c)
			}
		}

		prefs, err := p.GetPreferences(ctx, u.ID)
		if err != nil {
			t.Fatal(err)
		}
		if prefs.FocusMinutes != constants.DefaultFocusMinutes || prefs.DailyGoal != constants.DefaultDailyGoal {
			t.Errorf("unexpected preferences %+v", prefs)
		}

		prefs.FocusMinutes = 50
		if err := p.SavePreferences(ctx, prefs); err != nil {
			t.Fatal(err)
		}
		prefs, _ = p.GetPreferences(ctx, u.ID)
		if prefs.FocusMinutes != 50 {
			t.Errorf("FocusMinutes = %d, want 50", prefs.FocusMinutes)
		}

		if _, err := p.GetUser(ctx, uuid.New().String()); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("GetUser(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("TaskOwnershipAndCompletion", func(t *testing.T) {
		p := open(t)
		owner := CreateUser(t, p, 0)
		other := CreateUser(t, p, 0)
		task := CreateTask(t, p, owner.ID, 15)

		if _, err := p.GetTask(ctx, other.ID, task.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign GetTask error = %v, want ErrNotFound", err)
		}

		first := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		var results []bool
		for _, at := range []time.Time{first, first.Add(time.Hour)} {
			err := p.WithUserTx(ctx, owner.ID, func(tx storage.Tx) error {
				ok, err := tx.MarkTaskCompleted(ctx, task.ID, at)
				results = append(results, ok)
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
		}
		if !results[0] || results[1] {
			t.Errorf("MarkTaskCompleted results = %v, want [true false]", results)
		}

		got, err := p.GetTask(ctx, owner.ID, task.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !got.IsCompleted() || got.CompletedAt == nil || !got.CompletedAt.Equal(first) {
			t.Errorf("completed task = %+v", got)
		}

		ok, err := p.UpdateTaskPoints(ctx, owner.ID, task.ID, 99)
		if err != nil || ok {
			t.Errorf("UpdateTaskPoints on completed task = %v, %v; want false, nil", ok, err)
		}

		pending, err := p.GetTasks(ctx, owner.ID, false)
		if err != nil || len(pending) != 0 {
			t.Errorf("pending tasks = %d, %v; want 0", len(pending), err)
		}
	})

	t.Run("AdjustPointsNeverNegative", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 20)

		err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
			balance, ok, err := tx.AdjustPoints(ctx, u.ID, -25)
			if err != nil {
				return err
			}
			if ok || balance != 20 {
				t.Errorf("overdraft = %d, %v; want 20, false", balance, ok)
			}
			balance, ok, err = tx.AdjustPoints(ctx, u.ID, -20)
			if !ok || balance != 0 {
				t.Errorf("exact debit = %d, %v; want 0, true", balance, ok)
			}
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if b := Balance(t, p, u.ID); b != 0 {
			t.Errorf("balance = %d, want 0", b)
		}
	})

	t.Run("RollbackDiscardsWrites", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 5)
		boom := errors.New("boom")

		err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
			if _, _, err := tx.AdjustPoints(ctx, u.ID, 100); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("WithUserTx error = %v, want boom", err)
		}
		if b := Balance(t, p, u.ID); b != 5 {
			t.Errorf("balance = %d after rollback, want 5", b)
		}
	})

	t.Run("RewardClaimOnce", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 0)
		r := CreateReward(t, p, u.ID, 10)

		var results []bool
		for i := 0; i < 2; i++ {
			err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
				ok, err := tx.MarkRewardClaimed(ctx, r.ID, time.Now())
				results = append(results, ok)
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
		}
		if !results[0] || results[1] {
			t.Errorf("MarkRewardClaimed results = %v, want [true false]", results)
		}
		got, _ := p.GetReward(ctx, u.ID, r.ID)
		if !got.IsClaimed || got.ClaimedAt == nil {
			t.Errorf("reward = %+v, want claimed", got)
		}
	})

	t.Run("SessionEndsOnce", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 0)
		start := time.Now().UTC().Add(-30 * time.Minute)
		s := models.PomodoroSession{ID: uuid.New().String(), UserID: u.ID, StartTime: start, Duration: 25}
		if err := p.AddSession(ctx, s); err != nil {
			t.Fatal(err)
		}

		note := "deep work"
		var results []bool
		for i := 0; i < 2; i++ {
			err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
				ok, err := tx.EndSession(ctx, s.ID, time.Now(), &note)
				results = append(results, ok)
				return err
			})
			if err != nil {
				t.Fatal(err)
			}
		}
		if !results[0] || results[1] {
			t.Errorf("EndSession results = %v, want [true false]", results)
		}

		got, err := p.GetSession(ctx, u.ID, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Running() || !got.Completed || got.Notes != note {
			t.Errorf("session = %+v", got)
		}

		list, err := p.GetSessions(ctx, u.ID, start.Add(-time.Minute), start.Add(time.Minute))
		if err != nil || len(list) != 1 {
			t.Errorf("GetSessions = %d, %v; want 1", len(list), err)
		}
	})

	t.Run("SummaryWriteOnce", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 0)
		day := calendar.Day("2024-05-01")

		first := models.DailySummary{ID: uuid.New().String(), UserID: u.ID, Day: day, Content: "first", CreatedAt: time.Now()}
		second := models.DailySummary{ID: uuid.New().String(), UserID: u.ID, Day: day, Content: "second", CreatedAt: time.Now()}

		if ok, err := p.InsertSummaryIfAbsent(ctx, first); err != nil || !ok {
			t.Fatalf("first insert = %v, %v", ok, err)
		}
		if ok, err := p.InsertSummaryIfAbsent(ctx, second); err != nil || ok {
			t.Fatalf("second insert = %v, %v; want false, nil", ok, err)
		}
		got, err := p.GetSummary(ctx, u.ID, day)
		if err != nil || got.Content != "first" {
			t.Errorf("GetSummary = %q, %v; want first", got.Content, err)
		}
		if _, err := p.GetSummary(ctx, u.ID, day.AddDays(1)); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("missing summary error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DayActivity", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 0)
		day := calendar.Day("2024-05-01")
		from, to := day.Bounds(time.UTC)

		done := CreateTask(t, p, u.ID, 5)
		CreateTask(t, p, u.ID, 5)
		err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
			_, err := tx.MarkTaskCompleted(ctx, done.ID, from.Add(10*time.Hour))
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := p.AddSession(ctx, models.PomodoroSession{ID: uuid.New().String(), UserID: u.ID, StartTime: from.Add(9 * time.Hour), Duration: 25}); err != nil {
			t.Fatal(err)
		}
		for _, mood := range []constants.Mood{constants.MoodSad, constants.MoodHappy} {
			m := models.MoodEntry{ID: uuid.New().String(), UserID: u.ID, Mood: mood, Day: day, CreatedAt: time.Now()}
			if err := p.AddMoodEntry(ctx, m); err != nil {
				t.Fatal(err)
			}
			time.Sleep(2 * time.Millisecond)
		}

		a, err := p.GetDayActivity(ctx, u.ID, day, from, to)
		if err != nil {
			t.Fatal(err)
		}
		if a.TasksCompleted != 1 || a.TasksPending != 1 || a.SessionsStarted != 1 || len(a.CompletedTitles) != 1 {
			t.Errorf("activity = %+v", a)
		}

		mood, err := p.GetLatestMood(ctx, u.ID, day)
		if err != nil || mood == nil || mood.Mood != constants.MoodHappy {
			t.Errorf("latest mood = %+v, %v; want happy", mood, err)
		}
	})

	t.Run("ConcurrentDebits", func(t *testing.T) {
		p := open(t)
		u := CreateUser(t, p, 50)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := p.WithUserTx(ctx, u.ID, func(tx storage.Tx) error {
					_, ok, err := tx.AdjustPoints(ctx, u.ID, -10)
					if ok {
						mu.Lock()
						succeeded++
						mu.Unlock()
					}
					return err
				})
				if err != nil {
					t.Errorf("WithUserTx: %v", err)
				}
			}()
		}
		wg.Wait()

		if succeeded != 5 {
			t.Errorf("%d debits succeeded, want 5", succeeded)
		}
		if b := Balance(t, p, u.ID); b != 0 {
			t.Errorf("balance = %d, want 0", b)
		}
	})
}
