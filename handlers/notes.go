package handlers

import (
	"net/http"

	"notekeeper/models"
)

type noteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Archived bool   `json:"archived"`
}

func (h *Handler) GetActiveNotes(w http.ResponseWriter, r *http.Request) {
	h.listNotes(w, r, false)
}

func (h *Handler) GetArchivedNotes(w http.ResponseWriter, r *http.Request) {
	h.listNotes(w, r, true)
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request, archived bool) {
	var (
		notes []models.Note
		err   error
	)
	if archived {
		notes, err = h.notes.ListArchived(r.Context())
	} else {
		notes, err = h.notes.ListActive(r.Context())
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	note, err := h.notes.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote stores a new active note. Any archived flag in the body is ignored.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	note, err := h.notes.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/notes/"+note.ID.String())
	writeJSON(w, http.StatusCreated, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notes.Update(r.Context(), id, req.Title, req.Content, req.Archived); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notes.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notes.Archive(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnarchiveNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.notes.Unarchive(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
