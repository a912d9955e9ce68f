package checksum

import (
	"testing"

	"github.com/starford/notesapp/internal/models"
)

func TestSumKnownValue(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
}

func TestNoteVersionChangesWithFields(t *testing.T) {
	base := models.Note{ID: 1, Title: "a", Description: "b", Priority: models.PriorityLow}
	v := Note(base)
	if v != Note(base) {
		t.Fatal("version is not deterministic")
	}

	variants := []models.Note{
		{ID: 2, Title: "a", Description: "b", Priority: models.PriorityLow},
		{ID: 1, Title: "a2", Description: "b", Priority: models.PriorityLow},
		{ID: 1, Title: "a", Description: "b2", Priority: models.PriorityLow},
		{ID: 1, Title: "a", Description: "b", Priority: models.PriorityHigh},
		// Field boundaries must not blur.
		{ID: 1, Title: "ab", Description: "", Priority: models.PriorityLow},
	}
	for _, n := range variants {
		if Note(n) == v {
			t.Errorf("version of %+v equals base version", n)
		}
	}
}
