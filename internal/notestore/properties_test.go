package notestore

import (
	"context"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/starford/notesapp/internal/models"
)

var priorityGen = rapid.SampledFrom([]models.Priority{
	models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
})

// noteGen draws notes with lowercase ASCII titles so that the LIKE
// case folding cannot blur the containment checks.
var noteGen = rapid.Custom(func(t *rapid.T) models.Note {
	return models.Note{
		Title:       rapid.StringMatching(`[a-z]{1,12}`).Draw(t, "title"),
		Description: rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "description"),
		Priority:    priorityGen.Draw(t, "priority"),
	}
})

func TestProperties(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		if err := db.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll: %v", err)
		}
		notes := rapid.SliceOfN(noteGen, 1, 12).Draw(t, "notes")
		stored := make([]models.Note, 0, len(notes))
		for _, n := range notes {
			s, err := db.Insert(ctx, n)
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			stored = append(stored, s)
		}

		// search(substring of title) includes the note.
		target := stored[rapid.IntRange(0, len(stored)-1).Draw(t, "target")]
		lo := rapid.IntRange(0, len(target.Title)-1).Draw(t, "lo")
		hi := rapid.IntRange(lo+1, len(target.Title)).Draw(t, "hi")
		found, err := db.List(ctx, Search(target.Title[lo:hi]))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if !containsID(found, target.ID) {
			t.Fatalf("search(%q) missed note %+v", target.Title[lo:hi], target)
		}

		// search(absent string) excludes every note.
		missing, err := db.List(ctx, Search("#absent#"))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(missing) != 0 {
			t.Fatalf("search for absent string returned %d notes", len(missing))
		}

		// every search hit really contains the pattern.
		for _, n := range found {
			p := strings.ToLower(target.Title[lo:hi])
			if !strings.Contains(strings.ToLower(n.Title), p) && !strings.Contains(strings.ToLower(n.Description), p) {
				t.Fatalf("search hit %+v does not contain %q", n, p)
			}
		}

		high, err := db.List(ctx, SortByPriority(HighFirst))
		if err != nil {
			t.Fatalf("sort high: %v", err)
		}
		for i := 1; i < len(high); i++ {
			if high[i-1].Priority.Rank() < high[i].Priority.Rank() {
				t.Fatalf("sort high not non-increasing at %d: %v then %v", i, high[i-1].Priority, high[i].Priority)
			}
		}

		low, err := db.List(ctx, SortByPriority(LowFirst))
		if err != nil {
			t.Fatalf("sort low: %v", err)
		}
		for i := 1; i < len(low); i++ {
			if low[i-1].Priority.Rank() > low[i].Priority.Rank() {
				t.Fatalf("sort low not non-decreasing at %d: %v then %v", i, low[i-1].Priority, low[i].Priority)
			}
		}

		if len(high) != len(stored) || len(low) != len(stored) {
			t.Fatalf("sorted views lost notes: %d/%d of %d", len(high), len(low), len(stored))
		}
	})
}

func containsID(notes []models.Note, id int64) bool {
	for _, n := range notes {
		if n.ID == id {
			return true
		}
	}
	return false
}
