package notestore

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/starford/notesapp/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type snapshots struct {
	mu   sync.Mutex
	last []string
	n    int
}

func (s *snapshots) set(notes []models.Note) {
	s.mu.Lock()
	s.last = titles(notes)
	s.n++
	s.mu.Unlock()
}

func (s *snapshots) is(want ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n > 0 && equalStrings(s.last, want)
}

func TestWatchAllReflectsMutations(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	var got snapshots
	sub := db.Watch(All(), got.set)
	defer sub.Close()

	eventually(t, time.Second, 10*time.Millisecond, func() bool { return got.is() }, "initial empty snapshot not delivered")

	a := mustInsert(t, db, "a", "", models.PriorityLow)
	eventually(t, time.Second, 10*time.Millisecond, func() bool { return got.is("a") }, "insert not observed")

	a.Title = "a2"
	if err := db.Update(ctx, a); err != nil {
		t.Fatal(err)
	}
	eventually(t, time.Second, 10*time.Millisecond, func() bool { return got.is("a2") }, "update not observed")

	mustInsert(t, db, "b", "", models.PriorityHigh)
	if err := db.Delete(ctx, a); err != nil {
		t.Fatal(err)
	}
	eventually(t, time.Second, 10*time.Millisecond, func() bool { return got.is("b") }, "delete not observed")

	if err := db.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	eventually(t, time.Second, 10*time.Millisecond, func() bool { return got.is() }, "delete-all not observed")
}

func TestWatchSearchAndSortStayLive(t *testing.T) {
	db := testDB(t)

	var search, sorted snapshots
	s1 := db.Watch(Search("bug"), search.set)
	defer s1.Close()
	s2 := db.Watch(SortByPriority(HighFirst), sorted.set)
	defer s2.Close()

	mustInsert(t, db, "Buy milk", "", models.PriorityLow)
	mustInsert(t, db, "Fix bug", "", models.PriorityHigh)

	eventually(t, time.Second, 10*time.Millisecond, func() bool { return search.is("Fix bug") }, "search view not live")
	eventually(t, time.Second, 10*time.Millisecond, func() bool { return sorted.is("Fix bug", "Buy milk") }, "sort view not live")

	if db.Subscribers() != 2 {
		t.Errorf("Subscribers() = %d, want 2", db.Subscribers())
	}
	s1.Close()
	s2.Close()
	if db.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after close, want 0", db.Subscribers())
	}
}

func TestWatchFileSeesOtherConnection(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	other, err := Open(db.Path())
	if err != nil {
		t.Fatalf("open second handle: %v", err)
	}
	defer other.Close()

	var mu sync.Mutex
	var external int
	db.OnChange(func(c Change) {
		if c.Kind == ChangeExternal {
			mu.Lock()
			external++
			mu.Unlock()
		}
	})

	var got snapshots
	sub := db.Watch(All(), got.set)
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go db.WatchFile(ctx, logger)
	time.Sleep(100 * time.Millisecond)

	if _, err := other.Insert(context.Background(), models.Note{Title: "from elsewhere", Priority: models.PriorityMedium}); err != nil {
		t.Fatalf("Insert via second handle: %v", err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool { return got.is("from elsewhere") },
		"write from another connection not reflected in live query")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return external > 0
	}, "expected an external change event")
}

func TestWatchFileIgnoresOwnWrites(t *testing.T) {
	db := testDB(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var mu sync.Mutex
	var external int
	db.OnChange(func(c Change) {
		if c.Kind == ChangeExternal {
			mu.Lock()
			external++
			mu.Unlock()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go db.WatchFile(ctx, logger)
	time.Sleep(100 * time.Millisecond)

	mustInsert(t, db, "mine", "", models.PriorityLow)
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if external != 0 {
		t.Errorf("own write reported as external %d time(s)", external)
	}
}
