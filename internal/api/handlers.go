package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/magazine/internal/apperr"
	"github.com/starford/magazine/internal/facet"
	"github.com/starford/magazine/internal/magazine"
	"github.com/starford/magazine/internal/view"
)

// Handler holds API route handlers.
type Handler struct {
	svc *magazine.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *magazine.Service) *Handler {
	return &Handler{svc: svc}
}

// articleParam extracts the article name from the path (everything after
// /articles/) or from the "article" query parameter.
// Supports encoded slashes (e.g. newsletters%2Fa.txt).
func articleParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return r.URL.Query().Get("article")
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func locale(r *http.Request) view.Locale {
	return view.NegotiateLocale(r.Header.Get("Accept-Language"))
}

// Home handles GET /api/home.
//
//	@Summary		Home page view model
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	HomeResponse
//	@Router			/home [get]
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Home(r.Context(), locale(r)))
}

// ListArticles handles GET /api/articles.
//
//	@Summary		List page view model with optional filters
//	@Tags			pages
//	@Produce		json
//	@Param			q			query		string	false	"Free-text query"
//	@Param			category	query		string	false	"Category filter"
//	@Param			tag			query		string	false	"Comma-separated tags (any)"
//	@Success		200			{object}	ListResponse
//	@Router			/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := view.Query{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Tags:     facet.ParseTags(q.Get("tag")),
	}
	writeJSON(w, http.StatusOK, h.svc.List(r.Context(), query, locale(r)))
}

// GetArticle handles GET /api/articles/* and GET /api/article?article=.
//
//	@Summary		Single-article view model
//	@Tags			pages
//	@Produce		json
//	@Param			article	query		string	true	"Article file"
//	@Success		200		{object}	ArticleResponse
//	@Success		304		"Not modified"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/article [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	name := articleParam(r)
	a, err := h.svc.Article(r.Context(), SessionFrom(r.Context()), name, locale(r))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidArticle):
			writeError(w, http.StatusBadRequest, msgInvalidArticle)
		case errors.Is(err, apperr.ErrNotFound):
			writeError(w, http.StatusNotFound, msgArticleMissing)
		default:
			slog.Error("get article failed", slog.String("article", name), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	w.Header().Set("ETag", a.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if matchesETag(r.Header.Get("If-None-Match"), a.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Prefetch handles POST /api/prefetch.
//
//	@Summary		Warm the session cache with an article
//	@Tags			cache
//	@Produce		json
//	@Param			article	query		string	true	"Article file"
//	@Success		202		{object}	PrefetchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/prefetch [post]
func (h *Handler) Prefetch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("article")
	if err := h.svc.Prime(r.Context(), SessionFrom(r.Context()), name); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidArticle)
		return
	}
	writeJSON(w, http.StatusAccepted, PrefetchResponse{Article: name})
}

// Facets handles GET /api/facets.
//
//	@Summary		Category and tag counts
//	@Tags			facets
//	@Produce		json
//	@Success		200	{object}	FacetsResponse
//	@Router			/facets [get]
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Facets(r.Context()))
}
