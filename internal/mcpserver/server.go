// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the magazine's content for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/magazine/internal/apperr"
	"github.com/starford/magazine/internal/facet"
	"github.com/starford/magazine/internal/magazine"
	"github.com/starford/magazine/internal/view"
)

const frontMatterURI = "magazine://front-matter"

// Server wraps the MCP server with magazine tools.
type Server struct {
	mcp *server.MCPServer
	svc *magazine.Service
}

// New creates a new MCP server with all magazine tools registered.
func New(svc *magazine.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Magazine",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Rank visible articles against a free-text query. "+
			"Title matches weigh most, then subtitle, author, category, tags and the start of the body."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read one article: its header fields, reading time and body."),
		mcp.WithString("article", mcp.Required(), mcp.Description("Article file as listed in the manifest (e.g. newsletters/issue-12.txt)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List visible articles, optionally filtered by category and tags."),
		mcp.WithString("category", mcp.Description("Category to match (case-insensitive)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; an article matches if it has any of them")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("list_facets",
		mcp.WithDescription("Category and tag counts across all visible articles, most frequent first."),
	), s.listFacets)

	s.mcp.AddTool(mcp.NewTool("home_page",
		mcp.WithDescription("The home page layout: lead story, top stories, latest grid, sidebar and trending tags."),
	), s.homePage)

	s.mcp.AddTool(mcp.NewTool("get_front_matter_contract",
		mcp.WithDescription("Returns the article header format. Read it before drafting article text."),
	), s.getFrontMatterContract)

	s.mcp.AddResource(
		mcp.NewResource(frontMatterURI, "Article Front-Matter Format",
			mcp.WithResourceDescription("Header grammar and recognised keys for magazine articles."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontMatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type searchHit struct {
	File     string   `json:"file"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Author   string   `json:"author,omitempty"`
	Date     string   `json:"date,omitempty"`
	Tags     []string `json:"tags"`
	Score    int      `json:"score"`
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)

	results := s.svc.Search(ctx, query, limit)
	hits := make([]searchHit, len(results))
	for i, r := range results {
		a := r.Article
		hits[i] = searchHit{
			File:     string(a.File),
			Title:    a.Meta.Title,
			Subtitle: a.Meta.Subtitle,
			Author:   a.Meta.Author,
			Date:     view.DefaultLocale.FormatDate(a.Date),
			Tags:     a.Tags,
			Score:    r.Score,
		}
	}
	return jsonResult(hits)
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("article")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.Article(ctx, "", name, view.DefaultLocale)
	switch {
	case errors.Is(err, apperr.ErrInvalidArticle):
		return mcp.NewToolResultError(fmt.Sprintf("invalid article: %s", name)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return jsonResult(a.Article)
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := view.Query{
		Category: req.GetString("category", ""),
		Tags:     facet.ParseTags(req.GetString("tags", "")),
	}
	return jsonResult(s.svc.List(ctx, q, view.DefaultLocale).Items)
}

func (s *Server) listFacets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Facets(ctx))
}

func (s *Server) homePage(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Home(ctx, view.DefaultLocale))
}

func (s *Server) getFrontMatterContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontMatterContract), nil
}

func (s *Server) readFrontMatterResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      frontMatterURI,
			MIMEType: "text/markdown",
			Text:     FrontMatterContract,
		},
	}, nil
}
