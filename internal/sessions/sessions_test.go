package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/neurozen/internal/calendar"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/sessions"
	"github.com/julianstephens/neurozen/internal/storage"
	"github.com/julianstephens/neurozen/internal/storage/storagetest"
)

func setup(t *testing.T) (*sessions.Service, storage.Provider, *calendar.FixedClock) {
	t.Helper()
	store := storagetest.OpenSQLite(t)
	clock := calendar.Fixed(time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC))
	return sessions.NewService(store, ledger.New(store, clock)), store, clock
}

func TestStartUsesFocusPreference(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	u := storagetest.CreateUser(t, store, 0)

	prefs, _ := store.GetPreferences(ctx, u.ID)
	prefs.FocusMinutes = 50
	if err := store.SavePreferences(ctx, prefs); err != nil {
		t.Fatal(err)
	}

	s, err := svc.Start(ctx, clock, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 50 || !s.Running() || s.TaskID != nil {
		t.Errorf("session = %+v", s)
	}
}

func TestStartWithTaskOwnership(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	owner := storagetest.CreateUser(t, store, 0)
	other := storagetest.CreateUser(t, store, 0)
	task := storagetest.CreateTask(t, store, owner.ID, 5)

	s, err := svc.Start(ctx, clock, owner.ID, &task.ID)
	if err != nil || s.TaskID == nil || *s.TaskID != task.ID {
		t.Fatalf("Start(owner task) = %+v, %v", s, err)
	}
	if _, err := svc.Start(ctx, clock, other.ID, &task.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Start(foreign task) error = %v, want ErrNotFound", err)
	}
}

func TestEndExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	u := storagetest.CreateUser(t, store, 0)
	s, err := svc.Start(ctx, clock, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(25 * time.Minute)
	note := "wrote the intro"
	res, err := svc.End(ctx, clock, u.ID, s.ID, &note)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Ended || res.Session.Running() || res.Session.Notes != note || !res.Session.Completed {
		t.Errorf("first End = %+v", res)
	}

	clock.Advance(time.Minute)
	other := "ignored"
	res, err = svc.End(ctx, clock, u.ID, s.ID, &other)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ended || res.Session.Notes != note {
		t.Errorf("second End = %+v, want no change", res)
	}

	got, _ := store.GetUser(ctx, u.ID)
	if got.TotalPomodoroSessions != 1 {
		t.Errorf("TotalPomodoroSessions = %d, want 1", got.TotalPomodoroSessions)
	}
}

func TestConcurrentEndCountsOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	u := storagetest.CreateUser(t, store, 0)
	s, err := svc.Start(ctx, clock, u.ID, nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.End(ctx, clock, u.ID, s.ID, nil); err != nil {
				t.Errorf("End: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.GetUser(ctx, u.ID)
	if got.TotalPomodoroSessions != 1 {
		t.Errorf("TotalPomodoroSessions = %d, want 1", got.TotalPomodoroSessions)
	}
}

func TestEndForeignSession(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	owner := storagetest.CreateUser(t, store, 0)
	other := storagetest.CreateUser(t, store, 0)
	s, _ := svc.Start(ctx, clock, owner.ID, nil)

	if _, err := svc.End(ctx, clock, other.ID, s.ID, nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("End(foreign) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.End(ctx, clock, owner.ID, "missing", nil); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("End(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHistoryGroupsByDay(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := setup(t)
	u := storagetest.CreateUser(t, store, 0)

	for _, offset := range []time.Duration{0, 2 * time.Hour, 24 * time.Hour} {
		clock.Set(time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC).Add(offset))
		s, err := svc.Start(ctx, clock, u.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		clock.Advance(25 * time.Minute)
		if _, err := svc.End(ctx, clock, u.ID, s.ID, nil); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := svc.History(ctx, u.ID, "2024-05-10", "2024-05-11", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d day groups, want 2", len(groups))
	}
	if groups[0].Day != "2024-05-11" || len(groups[0].Sessions) != 1 {
		t.Errorf("newest group = %+v", groups[0])
	}
	if groups[1].Day != "2024-05-10" || len(groups[1].Sessions) != 2 || groups[1].Minutes != 50 {
		t.Errorf("older group = %+v", groups[1])
	}
}
