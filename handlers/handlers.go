package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"notekeeper/errs"
	appmw "notekeeper/middleware"
	"notekeeper/service"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler wires the services into HTTP handlers.
type Handler struct {
	auth  service.AuthService
	notes service.NoteService
	cats  service.CategoryService
	links service.LinkService
	db    Pinger
	log   *zap.Logger
}

// New constructs a Handler with injected services.
func New(auth service.AuthService, notes service.NoteService, cats service.CategoryService,
	links service.LinkService, db Pinger, log *zap.Logger) *Handler {
	return &Handler{auth: auth, notes: notes, cats: cats, links: links, db: db, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", errs.ErrValidation)
	}
	return nil
}

// idParam parses a UUID path parameter. Malformed ids do not match any
// entity, so they are reported as not found.
func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, chi.URLParam(r, name), errs.ErrNotFound)
	}
	return id, nil
}

// writeError maps service errors to status codes. Internal failures are
// logged and answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		http.Error(w, message(err, errs.ErrValidation), http.StatusBadRequest)
	case errors.Is(err, errs.ErrInUse):
		http.Error(w, message(err, errs.ErrInUse), http.StatusBadRequest)
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, message(err, errs.ErrNotFound), http.StatusNotFound)
	case errors.Is(err, errs.ErrConflict):
		http.Error(w, message(err, errs.ErrConflict), http.StatusConflict)
	case errors.Is(err, errs.ErrUnauthorized):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the response.
		h.log.Debug("request canceled", zap.String("path", r.URL.Path))
	default:
		user, _ := appmw.UsernameFromContext(r.Context())
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user", user),
			zap.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// message returns err's text, or the sentinel's own text when err is the bare sentinel.
func message(err, sentinel error) string {
	if err == sentinel {
		return sentinel.Error()
	}
	return err.Error()
}

// Healthz pings the database.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
