// Package models defines the domain types for notesapp.
package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesapp/internal/apperr"
)

// Note is the single persisted entity.
type Note struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Validate reports whether title or description carries any text.
// Only a note that is blank in both fields is rejected.
func Validate(title, description string) bool {
	return strings.TrimSpace(title) != "" || strings.TrimSpace(description) != ""
}

// Validate checks the note before it is written.
func (n Note) Validate() error {
	if !Validate(n.Title, n.Description) {
		return fmt.Errorf("%w: title and description are both empty", apperr.ErrValidation)
	}
	err := validation.ValidateStruct(&n,
		validation.Field(&n.Priority, validation.Required, validation.In(PriorityHigh, PriorityMedium, PriorityLow)),
	)
	if err != nil {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownPriority, string(n.Priority))
	}
	return nil
}

// Fields returns a copy of the note without its identifier. Undo uses it
// to re-insert the same values as a fresh note.
func (n Note) Fields() Note {
	n.ID = 0
	return n
}
