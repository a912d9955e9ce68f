package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesapp/internal/noteservice"
)

// Streams holds the optional streaming endpoints mounted next to the REST
// routes, behind the same auth middleware.
type Streams struct {
	Events http.Handler // GET /events (SSE)
	Live   http.Handler // GET /live (WebSocket)
}

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, streams Streams) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Delete("/", h.DeleteAllNotes)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
	})
	r.Get("/priorities", h.Priorities)

	if streams.Events != nil {
		r.Get("/events", streams.Events.ServeHTTP)
	}
	if streams.Live != nil {
		r.Get("/live", streams.Live.ServeHTTP)
	}

	return r
}
