package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/noteservice"
)

// NoteRequest is the request body for creating or updating a note.
type NoteRequest struct {
	Title       string `json:"title" example:"Buy milk"`
	Description string `json:"description" example:"2 liters"`
	Priority    string `json:"priority" example:"High Priority"`
}

// Validate checks the request shape. Whether the note itself is complete
// is decided by the service.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(0, 500)),
		validation.Field(&r.Description, validation.Length(0, 10000)),
		validation.Field(&r.Priority, validation.Required),
	)
}

func (r NoteRequest) input() noteservice.NoteInput {
	return noteservice.NoteInput{Title: r.Title, Description: r.Description, Priority: r.Priority}
}

// Note is a single note in a response (aliased from the service layer).
type Note = noteservice.NoteView

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total" example:"2"`
}

// MessageResponse carries a status message and, for single-note
// operations, the affected note.
type MessageResponse struct {
	Message string `json:"message" example:"Berhasil di Update"`
	Note    *Note  `json:"note,omitempty"`
}

// PrioritiesResponse lists the accepted priority labels.
type PrioritiesResponse struct {
	Labels []string          `json:"labels"`
	Levels []models.Priority `json:"levels"`
}
