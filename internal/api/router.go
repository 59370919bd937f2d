package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jrnl/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *journal.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{filename}", h.GetEntry)
	r.Put("/entries/{filename}", h.UpdateEntry)
	r.Delete("/entries/{filename}", h.DeleteEntry)
	r.Get("/entries/{filename}/raw", h.GetRaw)

	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)
	r.Post("/validate", h.Validate)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
