package handlers

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"notekeeper/auth"
	appmw "notekeeper/middleware"
)

// RouterConfig holds what NewRouter needs besides the handlers.
type RouterConfig struct {
	Tokens     *auth.Tokens
	CORSOrigin string
	Log        *zap.Logger
}

// NewRouter builds the API. Everything under /api except login requires a
// bearer token.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(appmw.Logger(cfg.Log))
	r.Use(appmw.Recoverer(cfg.Log))
	if cfg.CORSOrigin != "" {
		r.Use(appmw.CORS(cfg.CORSOrigin))
	}

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(appmw.RequireAuth(cfg.Tokens, cfg.Log))

			r.Get("/notes/active", h.GetActiveNotes)
			r.Get("/notes/archived", h.GetArchivedNotes)
			r.Get("/notes/{id}", h.GetNote)
			r.Post("/notes", h.CreateNote)
			r.Put("/notes/{id}", h.UpdateNote)
			r.Delete("/notes/{id}", h.DeleteNote)
			r.Patch("/notes/{id}/archive", h.ArchiveNote)
			r.Patch("/notes/{id}/unarchive", h.UnarchiveNote)

			r.Get("/notes/{id}/categories", h.GetNoteCategories)
			r.Post("/notes/{id}/categories", h.AddNoteCategory)
			r.Put("/notes/{id}/categories", h.ReplaceNoteCategories)
			r.Delete("/notes/{id}/categories/{categoryId}", h.RemoveNoteCategory)

			r.Get("/categories", h.GetCategories)
			r.Get("/categories/{id}", h.GetCategory)
			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{id}", h.UpdateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)
		})
	})

	return r
}
