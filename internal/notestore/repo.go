package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/models"
)

const noteCols = `id, title, description, priority`

func scanNote(scanner interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	var priority string
	if err := scanner.Scan(&n.ID, &n.Title, &n.Description, &priority); err != nil {
		return models.Note{}, err
	}
	n.Priority = models.Priority(priority)
	return n, nil
}

// Insert stores n as a new note and returns it with its assigned id.
// Any id already set on n is ignored.
func (db *DB) Insert(ctx context.Context, n models.Note) (models.Note, error) {
	if err := n.Validate(); err != nil {
		return models.Note{}, err
	}

	db.mu.Lock()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO notes (title, description, priority) VALUES (?, ?, ?)`,
		n.Title, n.Description, string(n.Priority),
	)
	if err != nil {
		db.mu.Unlock()
		return models.Note{}, fmt.Errorf("notestore: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	db.mu.Unlock()
	if err != nil {
		return models.Note{}, fmt.Errorf("notestore: last insert id: %w", err)
	}

	n.ID = id
	db.changed(Change{Kind: ChangeCreated, Note: n})
	return n, nil
}

// Update replaces the fields of the note with n.ID.
func (db *DB) Update(ctx context.Context, n models.Note) error {
	if err := n.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET title = ?, description = ?, priority = ? WHERE id = ?`,
		n.Title, n.Description, string(n.Priority), n.ID,
	)
	if err != nil {
		db.mu.Unlock()
		return fmt.Errorf("notestore: update note: %w", err)
	}
	affected, err := res.RowsAffected()
	db.mu.Unlock()
	if err != nil {
		return fmt.Errorf("notestore: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notestore: update note %d: %w", n.ID, apperr.ErrNotFound)
	}

	db.changed(Change{Kind: ChangeUpdated, Note: n})
	return nil
}

// Delete removes the note with n.ID.
func (db *DB) Delete(ctx context.Context, n models.Note) error {
	db.mu.Lock()
	deleted, err := db.deleteTx(ctx, n.ID)
	db.mu.Unlock()
	if err != nil {
		return err
	}

	db.changed(Change{Kind: ChangeDeleted, Note: deleted})
	return nil
}

func (db *DB) deleteTx(ctx context.Context, id int64) (models.Note, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Note{}, fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	n, err := scanNote(tx.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("notestore: delete note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("notestore: get note: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return models.Note{}, fmt.Errorf("notestore: delete note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Note{}, fmt.Errorf("notestore: commit: %w", err)
	}
	return n, nil
}

// DeleteAll clears the collection. Ids stay retired.
func (db *DB) DeleteAll(ctx context.Context) error {
	db.mu.Lock()
	_, err := db.conn.ExecContext(ctx, `DELETE FROM notes`)
	db.mu.Unlock()
	if err != nil {
		return fmt.Errorf("notestore: delete all: %w", err)
	}

	db.changed(Change{Kind: ChangeCleared})
	return nil
}

// Get returns the note with the given id.
func (db *DB) Get(ctx context.Context, id int64) (models.Note, error) {
	n, err := scanNote(db.conn.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("notestore: get note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("notestore: get note: %w", err)
	}
	return n, nil
}

// List evaluates q once.
func (db *DB) List(ctx context.Context, q Query) ([]models.Note, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch q.kind {
	case kindSearch:
		like := likePattern(q.pattern)
		rows, err = db.conn.QueryContext(ctx, `
			SELECT `+noteCols+`
			FROM notes
			WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
			ORDER BY id ASC
		`, like, like)
	case kindPriority:
		rows, err = db.conn.QueryContext(ctx, `SELECT `+noteCols+` FROM notes ORDER BY `+priorityOrderSQL(q.order))
	default:
		rows, err = db.conn.QueryContext(ctx, `SELECT `+noteCols+` FROM notes ORDER BY id ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: list %s: %w", q, err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("notestore: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
