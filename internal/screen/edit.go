package screen

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/notestore"
	"github.com/starford/notesapp/internal/status"
)

// EditState is the lifecycle state of the edit screen.
type EditState int

const (
	Viewing EditState = iota
	Saving
	Deleting
	Closed
)

func (s EditState) String() string {
	switch s {
	case Saving:
		return "saving"
	case Deleting:
		return "deleting"
	case Closed:
		return "closed"
	default:
		return "viewing"
	}
}

// Form holds the edit fields as entered. PriorityLabel is one of
// models.Labels or a bare level name.
type Form struct {
	Title         string
	Description   string
	PriorityLabel string
}

// EditController drives the edit screen for a single note.
type EditController struct {
	store   notestore.NoteStore
	notify  Notifier
	confirm Confirmer
	nav     Navigator

	mu    sync.Mutex
	note  models.Note
	state EditState
}

// NewEditController opens the edit screen for n.
func NewEditController(store notestore.NoteStore, n models.Note, notifier Notifier, confirmer Confirmer, navigator Navigator) *EditController {
	return &EditController{
		store:   store,
		notify:  notifier,
		confirm: confirmer,
		nav:     navigator,
		note:    n,
	}
}

// Note returns the note being edited.
func (c *EditController) Note() models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.note
}

// Form returns the fields pre-populated from the note.
func (c *EditController) Form() Form {
	n := c.Note()
	return Form{
		Title:         n.Title,
		Description:   n.Description,
		PriorityLabel: n.Priority.Label(),
	}
}

// State returns the current lifecycle state.
func (c *EditController) State() EditState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Save validates f and writes it over the note. On success the screen
// closes and navigates back to the list; on failure it stays open.
func (c *EditController) Save(ctx context.Context, f Form) error {
	if c.State() == Closed {
		return ErrClosed
	}
	if !models.Validate(f.Title, f.Description) {
		c.notify.Notify(toast(status.Incomplete))
		return nil
	}
	p, err := models.ParsePriority(f.PriorityLabel)
	if err != nil {
		c.notify.Notify(toast(status.Incomplete))
		return nil
	}

	n, ok := c.begin(Saving)
	if !ok {
		return ErrClosed
	}
	n.Title = f.Title
	n.Description = f.Description
	n.Priority = p

	if err := c.store.Update(ctx, n); err != nil {
		c.end(Viewing, nil)
		slog.Warn("update note failed", slog.Int64("id", n.ID), slog.String("error", err.Error()))
		c.notify.Notify(toast(errorText(err)))
		return nil
	}

	c.end(Closed, &n)
	c.notify.Notify(toast(status.Updated))
	c.nav.ToList()
	return nil
}

// Delete asks for confirmation and removes the note.
func (c *EditController) Delete(ctx context.Context) error {
	if c.State() == Closed {
		return ErrClosed
	}
	n := c.Note()
	ok := c.confirm.Confirm(ctx, Dialog{
		Title:   status.DeleteNoteTitle(n.Title),
		Message: status.DeleteNoteMessage(n.Title),
	}.withDefaults())
	if !ok {
		return nil
	}

	n, ok = c.begin(Deleting)
	if !ok {
		return ErrClosed
	}
	if err := c.store.Delete(ctx, n); err != nil {
		c.end(Viewing, nil)
		slog.Warn("delete note failed", slog.Int64("id", n.ID), slog.String("error", err.Error()))
		c.notify.Notify(toast(errorText(err)))
		return nil
	}

	c.end(Closed, nil)
	c.notify.Notify(toast(status.Removed(n.Title)))
	c.nav.ToList()
	return nil
}

// Back leaves the screen without saving.
func (c *EditController) Back() {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return
	}
	c.state = Closed
	c.mu.Unlock()
	c.nav.ToList()
}

// begin moves from Viewing to next. It reports false if another
// operation is in progress or the screen is closed.
func (c *EditController) begin(next EditState) (models.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Viewing {
		return models.Note{}, false
	}
	c.state = next
	return c.note, true
}

func (c *EditController) end(next EditState, saved *models.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = next
	if saved != nil {
		c.note = *saved
	}
}
