package noteservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(testutil.TestStore(t))
}

func TestCreateParsesLabel(t *testing.T) {
	svc := testService(t)
	n, err := svc.Create(context.Background(), NoteInput{Title: "Fix bug", Priority: "High Priority"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Priority != models.PriorityHigh || n.PriorityLabel != models.LabelHigh {
		t.Errorf("priority = %q / %q", n.Priority, n.PriorityLabel)
	}
	if n.ID == 0 || n.Version == "" {
		t.Errorf("id/version not set: %+v", n)
	}
}

func TestCreateRejects(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, NoteInput{Priority: "Low Priority"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank note err = %v, want ErrValidation", err)
	}
	if _, err := svc.Create(ctx, NoteInput{Title: "x", Priority: "Urgent"}); !errors.Is(err, apperr.ErrUnknownPriority) {
		t.Errorf("bad label err = %v, want ErrUnknownPriority", err)
	}
}

func TestUpdateWithVersion(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, NoteInput{Title: "v1", Priority: "low"})

	updated, err := svc.Update(ctx, created.ID, NoteInput{Title: "v2", Priority: "medium"}, created.Version)
	if err != nil {
		t.Fatalf("Update with current version: %v", err)
	}
	if updated.ID != created.ID || updated.Title != "v2" || updated.Priority != models.PriorityMedium {
		t.Errorf("updated = %+v", updated)
	}

	// The old version is stale now.
	if _, err := svc.Update(ctx, created.ID, NoteInput{Title: "v3", Priority: "low"}, created.Version); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale version err = %v, want ErrConflict", err)
	}

	// No version means no check.
	if _, err := svc.Update(ctx, created.ID, NoteInput{Title: "v3", Priority: "low"}, ""); err != nil {
		t.Errorf("update without version: %v", err)
	}

	if _, err := svc.Update(ctx, 9999, NoteInput{Title: "x", Priority: "low"}, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing note err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReturnsRemovedNote(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	created, _ := svc.Create(ctx, NoteInput{Title: "gone", Description: "d", Priority: "high"})

	removed, err := svc.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.Title != "gone" || removed.Description != "d" {
		t.Errorf("removed = %+v", removed)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if _, err := svc.Delete(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestListQueries(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	_, _ = svc.Create(ctx, NoteInput{Title: "Buy milk", Priority: "Low Priority"})
	_, _ = svc.Create(ctx, NoteInput{Title: "Fix bug", Priority: "High Priority"})

	cases := []struct {
		q    ListQuery
		want []string
	}{
		{ListQuery{}, []string{"Buy milk", "Fix bug"}},
		{ListQuery{Query: "bug"}, []string{"Fix bug"}},
		{ListQuery{Sort: "high"}, []string{"Fix bug", "Buy milk"}},
		{ListQuery{Sort: "LOW"}, []string{"Buy milk", "Fix bug"}},
	}
	for _, c := range cases {
		got, err := svc.List(ctx, c.q)
		if err != nil {
			t.Fatalf("List(%+v): %v", c.q, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("List(%+v) len = %d, want %d", c.q, len(got), len(c.want))
		}
		for i := range got {
			if got[i].Title != c.want[i] {
				t.Errorf("List(%+v)[%d] = %q, want %q", c.q, i, got[i].Title, c.want[i])
			}
		}
	}

	if _, err := svc.List(ctx, ListQuery{Sort: "sideways"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad sort err = %v", err)
	}
	if _, err := svc.List(ctx, ListQuery{Query: "x", Sort: "high"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("query+sort err = %v", err)
	}
}

func TestWatch(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	var mu sync.Mutex
	var last []NoteView
	sub, err := svc.Watch(ListQuery{Query: "milk"}, func(v []NoteView) {
		mu.Lock()
		last = v
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer sub.Close()

	_, _ = svc.Create(ctx, NoteInput{Title: "Buy milk", Priority: "low"})
	_, _ = svc.Create(ctx, NoteInput{Title: "Fix bug", Priority: "high"})

	testutil.Eventually(t, time.Second, 10*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1 && last[0].Title == "Buy milk"
	}, "watch did not deliver filtered snapshot")

	if _, err := svc.Watch(ListQuery{Sort: "nope"}, func([]NoteView) {}); err == nil {
		t.Error("expected error for bad sort")
	}
}
