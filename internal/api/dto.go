package api

import (
	"github.com/starford/magazine/internal/magazine"
	"github.com/starford/magazine/internal/view"
)

// HomeResponse is the home page view model.
type HomeResponse = view.Home

// ListResponse is the list page view model.
type ListResponse = view.List

// ArticleResponse is the single-article view model.
type ArticleResponse = magazine.ArticleDetail

// FacetsResponse holds category and tag counts.
type FacetsResponse = magazine.Facets

// PrefetchResponse acknowledges a warm-cache request.
type PrefetchResponse struct {
	Article string `json:"article" example:"newsletters/2024-05-issue.txt" validate:"required"`
}

// Client-facing messages.
const (
	msgInvalidArticle = "Missing or invalid article parameter."
	msgArticleMissing = "Could not load this article."
)
