package notestore

import (
	"context"

	"github.com/starford/notesapp/internal/live"
	"github.com/starford/notesapp/internal/models"
)

// NoteStore defines the note collection operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type NoteStore interface {
	Insert(ctx context.Context, n models.Note) (models.Note, error)
	Update(ctx context.Context, n models.Note) error
	Delete(ctx context.Context, n models.Note) error
	DeleteAll(ctx context.Context) error
	Get(ctx context.Context, id int64) (models.Note, error)
	List(ctx context.Context, q Query) ([]models.Note, error)
	Watch(q Query, fn func([]models.Note)) *live.Subscription[[]models.Note]
}

// Verify *DB satisfies NoteStore at compile time.
var _ NoteStore = (*DB)(nil)

// ChangeKind names a store mutation.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeCleared  ChangeKind = "cleared"
	ChangeExternal ChangeKind = "external"
)

// Change describes a committed mutation. Note is zero for cleared and
// external changes.
type Change struct {
	Kind ChangeKind
	Note models.Note
}

// EventCallback is called after each committed change.
type EventCallback func(Change)

// OnChange registers cb to run after every committed change.
func (db *DB) OnChange(cb EventCallback) {
	db.hookMu.Lock()
	db.hooks = append(db.hooks, cb)
	db.hookMu.Unlock()
}

// Watch subscribes fn to the live result of q. fn receives the current
// result right away and the fresh result after every later change.
func (db *DB) Watch(q Query, fn func([]models.Note)) *live.Subscription[[]models.Note] {
	return db.live.Subscribe(func(ctx context.Context) ([]models.Note, error) {
		return db.List(ctx, q)
	}, fn)
}

// Subscribers returns the number of active live queries.
func (db *DB) Subscribers() int {
	return db.live.Len()
}

func (db *DB) changed(c Change) {
	db.live.Notify()

	db.hookMu.RLock()
	hooks := db.hooks
	db.hookMu.RUnlock()
	for _, cb := range hooks {
		cb(c)
	}
}
