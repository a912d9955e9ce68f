// Package livews streams live note queries over WebSocket. Each connection
// holds one live query and receives the full result whenever it changes.
package livews

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	ws "github.com/coder/websocket"

	"github.com/starford/notesapp/internal/apperr"
	"github.com/starford/notesapp/internal/noteservice"
)

const pingInterval = 30 * time.Second

// Snapshot is the message written to the client.
type Snapshot struct {
	Type  string                 `json:"type"`
	Query string                 `json:"query,omitempty"`
	Sort  string                 `json:"sort,omitempty"`
	Notes []noteservice.NoteView `json:"notes"`
}

// Handler upgrades GET /api/live?q=&sort= to a WebSocket.
type Handler struct {
	svc            *noteservice.Service
	originPatterns []string
}

// NewHandler creates a live query handler. Without origin patterns any
// origin is accepted.
func NewHandler(svc *noteservice.Service, originPatterns ...string) *Handler {
	return &Handler{svc: svc, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := noteservice.ListQuery{
		Query: r.URL.Query().Get("q"),
		Sort:  r.URL.Query().Get("sort"),
	}
	// Reject a bad query before the upgrade so the client sees a 400.
	if _, err := h.svc.List(r.Context(), q); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrValidation) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		OriginPatterns:     h.originPatterns,
		InsecureSkipVerify: len(h.originPatterns) == 0,
	})
	if err != nil {
		slog.Warn("livews: accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	latest := make(chan []byte, 1)
	sub, err := h.svc.Watch(q, func(notes []noteservice.NoteView) {
		msg, err := json.Marshal(Snapshot{Type: "snapshot", Query: q.Query, Sort: q.Sort, Notes: notes})
		if err != nil {
			slog.Error("livews: encode snapshot failed", slog.String("error", err.Error()))
			return
		}
		// Keep only the newest snapshot; callbacks are sequential.
		select {
		case <-latest:
		default:
		}
		latest <- msg
	})
	if err != nil {
		conn.Close(ws.StatusInternalError, "watch failed")
		return
	}
	defer sub.Close()

	go func() {
		defer cancel()
		readPump(ctx, conn)
	}()

	if err := writePump(ctx, conn, latest); err != nil && ctx.Err() == nil {
		slog.Debug("livews: connection ended", slog.String("error", err.Error()))
	}
	conn.Close(ws.StatusNormalClosure, "")
}

// readPump discards client messages until the connection closes.
func readPump(ctx context.Context, conn *ws.Conn) {
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func writePump(ctx context.Context, conn *ws.Conn, latest <-chan []byte) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-latest:
			if err := conn.Write(ctx, ws.MessageText, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
