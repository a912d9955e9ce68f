// Package noteservice is the use-case layer shared by the HTTP, WebSocket
// and MCP surfaces.
package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/checksum"
	"github.com/starford/notesapp/internal/live"
	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/notestore"
)

// NoteView is the outward representation of a note.
type NoteView struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Priority      models.Priority `json:"priority"`
	PriorityLabel string          `json:"priority_label"`
	Version       string          `json:"version"`
}

// NoteInput carries user-entered fields. Priority is a picker label or a
// bare level name.
type NoteInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Sort values accepted by ListQuery.
const (
	SortNone = ""
	SortHigh = "high"
	SortLow  = "low"
)

// ListQuery selects a read view. Query and Sort are mutually exclusive;
// both empty lists everything.
type ListQuery struct {
	Query string
	Sort  string
}

func (q ListQuery) storeQuery() (notestore.Query, error) {
	sort := strings.ToLower(strings.TrimSpace(q.Sort))
	if q.Query != "" && sort != SortNone {
		return notestore.Query{}, fmt.Errorf("%w: query and sort are mutually exclusive", apperr.ErrValidation)
	}
	switch sort {
	case SortHigh:
		return notestore.SortByPriority(notestore.HighFirst), nil
	case SortLow:
		return notestore.SortByPriority(notestore.LowFirst), nil
	case SortNone:
	default:
		return notestore.Query{}, fmt.Errorf("%w: unknown sort %q", apperr.ErrValidation, q.Sort)
	}
	if q.Query != "" {
		return notestore.Search(q.Query), nil
	}
	return notestore.All(), nil
}

// Service coordinates label parsing, versioning and store operations.
type Service struct {
	store notestore.NoteStore
}

// NewService creates a new note service.
func NewService(store notestore.NoteStore) *Service {
	return &Service{store: store}
}

// Create validates in and stores it as a new note.
func (s *Service) Create(ctx context.Context, in NoteInput) (*NoteView, error) {
	n, err := in.note()
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Insert(ctx, n)
	if err != nil {
		return nil, err
	}
	return view(stored), nil
}

// Get returns the note with id.
func (s *Service) Get(ctx context.Context, id int64) (*NoteView, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(n), nil
}

// Update replaces the fields of note id. A non-empty ifMatch must equal the
// current version, otherwise apperr.ErrConflict is returned.
func (s *Service) Update(ctx context.Context, id int64, in NoteInput, ifMatch string) (*NoteView, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Note(current) {
		return nil, apperr.ErrConflict
	}
	n, err := in.note()
	if err != nil {
		return nil, err
	}
	n.ID = id
	if err := s.store.Update(ctx, n); err != nil {
		return nil, err
	}
	return view(n), nil
}

// Delete removes note id and returns what was removed, so that a client
// can undo by creating it again.
func (s *Service) Delete(ctx context.Context, id int64) (*NoteView, error) {
	n, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, n); err != nil {
		return nil, err
	}
	return view(n), nil
}

// DeleteAll clears every note.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.store.DeleteAll(ctx)
}

// List evaluates q once.
func (s *Service) List(ctx context.Context, q ListQuery) ([]NoteView, error) {
	sq, err := q.storeQuery()
	if err != nil {
		return nil, err
	}
	notes, err := s.store.List(ctx, sq)
	if err != nil {
		return nil, err
	}
	return views(notes), nil
}

// Watch subscribes fn to the live result of q.
func (s *Service) Watch(q ListQuery, fn func([]NoteView)) (*live.Subscription[[]models.Note], error) {
	sq, err := q.storeQuery()
	if err != nil {
		return nil, err
	}
	return s.store.Watch(sq, func(notes []models.Note) {
		fn(views(notes))
	}), nil
}

func (in NoteInput) note() (models.Note, error) {
	p, err := models.ParsePriority(in.Priority)
	if err != nil {
		return models.Note{}, err
	}
	n := models.Note{Title: in.Title, Description: in.Description, Priority: p}
	if err := n.Validate(); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

func view(n models.Note) *NoteView {
	return &NoteView{
		ID:            n.ID,
		Title:         n.Title,
		Description:   n.Description,
		Priority:      n.Priority,
		PriorityLabel: n.Priority.Label(),
		Version:       checksum.Note(n),
	}
}

func views(notes []models.Note) []NoteView {
	out := make([]NoteView, len(notes))
	for i, n := range notes {
		out[i] = *view(n)
	}
	return out
}
