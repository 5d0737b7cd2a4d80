package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"notekeeper/errs"
)

type assignCategoryRequest struct {
	CategoryID string `json:"categoryId"`
}

// CategoryIDs is a pointer so a missing field is told apart from [].
type replaceCategoriesRequest struct {
	CategoryIDs *[]uuid.UUID `json:"categoryIds"`
}

func (h *Handler) GetNoteCategories(w http.ResponseWriter, r *http.Request) {
	noteID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cats, err := h.links.ListForNote(r.Context(), noteID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) AddNoteCategory(w http.ResponseWriter, r *http.Request) {
	noteID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req assignCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	categoryID, err := uuid.FromString(req.CategoryID)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("category %q: %w", req.CategoryID, errs.ErrNotFound))
		return
	}
	if err := h.links.Add(r.Context(), noteID, categoryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveNoteCategory(w http.ResponseWriter, r *http.Request) {
	noteID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	categoryID, err := idParam(r, "categoryId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.links.Remove(r.Context(), noteID, categoryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceNoteCategories sets the note's categories to the submitted set in
// one transaction.
func (h *Handler) ReplaceNoteCategories(w http.ResponseWriter, r *http.Request) {
	noteID, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req replaceCategoriesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.CategoryIDs == nil {
		h.writeError(w, r, fmt.Errorf("%w: categoryIds is required", errs.ErrValidation))
		return
	}
	if err := h.links.Replace(r.Context(), noteID, *req.CategoryIDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
