package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/labnote/internal/labservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *labservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/search", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Put("/query", h.SetQuery)
		r.Get("/state", h.State)
		r.Get("/suggestions", h.Suggestions)
		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
	})

	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{id}", h.GetEntry)

	r.Get("/notebooks", h.ListNotebooks)
	r.Post("/notebooks", h.CreateNotebook)
	r.Get("/notebooks/{id}", h.GetNotebook)
	r.Put("/notebooks/{id}", h.UpdateNotebook)
	r.Delete("/notebooks/{id}", h.DeleteNotebook)

	r.Get("/tags", h.Tags)
	r.Get("/stats", h.Stats)
	r.Get("/export", h.Export)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
