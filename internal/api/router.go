package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/magazine/internal/magazine"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events. secureCookies marks the
// session cookie Secure.
func NewRouter(svc *magazine.Service, sseHandler http.Handler, secureCookies bool) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(SessionMiddleware(secureCookies))

	// Page view models.
	r.Get("/home", h.Home)
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/*", h.GetArticle)
	r.Get("/article", h.GetArticle)

	// Warm cache.
	r.Post("/prefetch", h.Prefetch)

	// Facets.
	r.Get("/facets", h.Facets)

	// Live reload.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
