package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const externalDebounce = 100 * time.Millisecond

// WatchFile watches the database file (and its -wal/-journal siblings) for
// writes made by other processes until ctx is cancelled. When the data
// version moved, every live query is re-evaluated and hooks receive a
// ChangeExternal event.
//
// Events are debounced: a burst of file writes results in one refresh.
func (db *DB) WatchFile(ctx context.Context, logger *slog.Logger) error {
	abs, err := filepath.Abs(db.path)
	if err != nil {
		return fmt.Errorf("notestore: resolve db path: %w", err)
	}
	dir, base := filepath.Dir(abs), filepath.Base(abs)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("notestore: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("notestore: watch %s: %w", dir, err)
	}

	last, err := db.dataVersion(ctx)
	if err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(externalDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(externalDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			v, err := db.dataVersion(ctx)
			if err != nil {
				logger.Warn("watcher: data version failed", slog.String("error", err.Error()))
				continue
			}
			if v == last {
				continue
			}
			last = v
			logger.Debug("watcher: external change", slog.Int64("data_version", v))
			db.changed(Change{Kind: ChangeExternal})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// dataVersion reads PRAGMA data_version on the store's connection. The
// value changes only when another connection commits.
func (db *DB) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := db.conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("notestore: data version: %w", err)
	}
	return v, nil
}
