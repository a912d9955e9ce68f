package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/live"
	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/notestore"
	"github.com/starford/notesapp/internal/status"
)

// ListState is the active query of the list screen.
type ListState int

const (
	Idle ListState = iota
	Searching
	SortedHigh
	SortedLow
)

func (s ListState) String() string {
	switch s {
	case Searching:
		return "searching"
	case SortedHigh:
		return "sorted-high"
	case SortedLow:
		return "sorted-low"
	default:
		return "idle"
	}
}

// ListController drives the list screen. It keeps exactly one live query
// open; switching the query replaces it.
type ListController struct {
	store   notestore.NoteStore
	view    View
	notify  Notifier
	confirm Confirmer
	nav     Navigator

	// renderMu orders renders so that a stale snapshot never overwrites a
	// newer one on screen.
	renderMu sync.Mutex

	mu     sync.Mutex
	state  ListState
	query  string
	items  []models.Note
	sub    *live.Subscription[[]models.Note]
	gen    uint64
	closed bool
}

// NewListController creates a controller in the Idle state showing all
// notes.
func NewListController(store notestore.NoteStore, view View, notifier Notifier, confirmer Confirmer, navigator Navigator) *ListController {
	c := &ListController{
		store:   store,
		view:    view,
		notify:  notifier,
		confirm: confirmer,
		nav:     navigator,
	}
	c.mu.Lock()
	c.switchLocked(Idle, "", notestore.All())
	c.mu.Unlock()
	return c
}

// Search shows the notes matching query. Every call replaces the live
// query, including calls with the same text.
func (c *ListController) Search(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchLocked(Searching, query, notestore.Search(query))
}

// SortHigh shows every note, highest priority first.
func (c *ListController) SortHigh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchLocked(SortedHigh, "", notestore.SortByPriority(notestore.HighFirst))
}

// SortLow shows every note, lowest priority first.
func (c *ListController) SortLow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchLocked(SortedLow, "", notestore.SortByPriority(notestore.LowFirst))
}

// switchLocked must be called with c.mu held.
func (c *ListController) switchLocked(state ListState, query string, q notestore.Query) {
	if c.closed {
		return
	}
	if c.sub != nil {
		c.sub.Close()
	}
	c.gen++
	gen := c.gen
	c.state = state
	c.query = query
	c.sub = c.store.Watch(q, func(notes []models.Note) {
		c.deliver(gen, notes)
	})
}

func (c *ListController) deliver(gen uint64, notes []models.Note) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.items = notes
	state := c.state
	c.mu.Unlock()

	c.view.Render(state, slices.Clone(notes))
}

// render pushes the current items to the view outside of a live delivery.
func (c *ListController) render() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	state, items := c.state, slices.Clone(c.items)
	c.mu.Unlock()

	c.view.Render(state, items)
}

// DeleteAll asks for confirmation and then clears the collection.
func (c *ListController) DeleteAll(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	ok := c.confirm.Confirm(ctx, Dialog{
		Title:   status.DeleteAllTitle,
		Message: status.DeleteAllMessage,
	}.withDefaults())
	if !ok {
		return nil
	}
	if err := c.store.DeleteAll(ctx); err != nil {
		c.fail("delete all notes failed", err)
		return nil
	}
	c.notify.Notify(toast(status.RemovedAll))
	return nil
}

// Swipe deletes the note at position. The note disappears from the list
// right away; the snackbar that follows carries an Undo action which
// re-inserts the same fields under a new id.
func (c *ListController) Swipe(ctx context.Context, position int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if position < 0 || position >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrPosition, position)
	}
	note := c.items[position]
	c.items = slices.Delete(slices.Clone(c.items), position, position+1)
	c.mu.Unlock()
	c.render()

	if err := c.store.Delete(ctx, note); err != nil {
		c.restore(position, note)
		c.fail("swipe delete failed", err)
		return nil
	}

	c.notify.Notify(Message{
		Kind: Snackbar,
		Text: status.Deleted(note.Title),
		Action: &Action{
			Label: status.Undo,
			Run: func(ctx context.Context) error {
				_, err := c.store.Insert(ctx, note.Fields())
				if err != nil {
					c.fail("undo failed", err)
				}
				return err
			},
		},
	})
	return nil
}

// restore puts a note back after a failed optimistic removal, unless a
// live delivery has replaced the list in the meantime.
func (c *ListController) restore(position int, n models.Note) {
	c.mu.Lock()
	if slices.ContainsFunc(c.items, func(x models.Note) bool { return x.ID == n.ID }) {
		c.mu.Unlock()
		return
	}
	position = min(position, len(c.items))
	c.items = slices.Insert(slices.Clone(c.items), position, n)
	c.mu.Unlock()
	c.render()
}

// Select opens the note at position in the edit screen.
func (c *ListController) Select(position int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if position < 0 || position >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrPosition, position)
	}
	note := c.items[position]
	c.mu.Unlock()

	c.nav.ToEdit(note)
	return nil
}

// Items returns the notes currently on screen.
func (c *ListController) Items() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// State returns the active query state.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the last search text.
func (c *ListController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Close disposes the live query. No render happens after Close returns.
func (c *ListController) Close() {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
}

func (c *ListController) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *ListController) fail(msg string, err error) {
	slog.Warn(msg, slog.String("error", err.Error()))
	c.notify.Notify(toast(errorText(err)))
}

// errorText maps an error to the message shown to the user.
func errorText(err error) string {
	if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrUnknownPriority) {
		return status.Incomplete
	}
	return status.Failed(err)
}
