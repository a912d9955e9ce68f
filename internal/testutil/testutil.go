// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/notesapp/internal/notestore"
)

// TestStore creates a temporary SQLite-backed note store that is
// automatically cleaned up.
func TestStore(t *testing.T) *notestore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notesapp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := notestore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
