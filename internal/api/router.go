package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/journal/internal/journal"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *journal.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pages.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/{input}", h.GetPage)
	r.Post("/pages/{input}/notes", h.CreateNote)
	r.Post("/pages/{input}/sync", h.SyncPage)

	// Entries.
	r.Post("/entries", h.AddEntry)

	// Search.
	r.Get("/search", h.Search)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	})

	return r
}
