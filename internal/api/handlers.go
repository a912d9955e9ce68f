package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesapp/internal/models"
	"github.com/starford/notesapp/internal/noteservice"
	"github.com/starford/notesapp/internal/status"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// noteID parses the {id} route parameter.
func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeNote(w http.ResponseWriter, r *http.Request) (NoteRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return req, false
	}
	return req, true
}

func etag(n *Note) string {
	return `"` + n.Version + `"`
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, optionally filtered or sorted
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	false	"Substring of title or description"
//	@Param			sort	query		string	false	"Priority order"	Enums(high, low)
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	notes, err := h.svc.List(r.Context(), noteservice.ListQuery{Query: q.Get("q"), Sort: q.Get("sort")})
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	Note
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	w.Header().Set("ETag", etag(note))
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeNote(w, r)
	if !ok {
		return
	}
	note, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	w.Header().Set("ETag", etag(note))
	w.Header().Set("Location", "/api/notes/"+strconv.FormatInt(note.ID, 10))
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Update a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int			true	"Note id"
//	@Param			If-Match	header		string		false	"Version from a previous read"
//	@Param			body		body		NoteRequest	true	"New fields"
//	@Success		200			{object}	MessageResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	req, ok := decodeNote(w, r)
	if !ok {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.Update(r.Context(), id, req.input(), ifMatch)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	w.Header().Set("ETag", etag(note))
	writeJSON(w, http.StatusOK, MessageResponse{Message: status.Updated, Note: note})
}

// DeleteNote handles DELETE /api/notes/{id}. The removed note is returned
// so that a client can offer undo by posting it again.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note id"
//	@Success		200	{object}	MessageResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: status.Removed(note.Title), Note: note})
}

// DeleteAllNotes handles DELETE /api/notes.
//
//	@Summary		Delete every note
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	MessageResponse
//	@Security		BearerAuth
//	@Router			/notes [delete]
func (h *Handler) DeleteAllNotes(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		writeError(w, "delete all notes", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: status.RemovedAll})
}

// Priorities handles GET /api/priorities.
//
//	@Summary		List priority labels
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	PrioritiesResponse
//	@Security		BearerAuth
//	@Router			/priorities [get]
func (h *Handler) Priorities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PrioritiesResponse{Labels: models.Labels(), Levels: models.Priorities()})
}
