package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/status"
	"ravehub/internal/store"
	"ravehub/models"
)

type BlogHandler struct {
	app   *pocketbase.PocketBase
	store *store.Store
}

func NewBlogHandler(app *pocketbase.PocketBase, store *store.Store) *BlogHandler {
	return &BlogHandler{
		app:   app,
		store: store,
	}
}

// ListPosts - Public list of published posts
func (h *BlogHandler) ListPosts(e *core.RequestEvent) error {
	limit := 20
	if raw := e.Request.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	posts, err := h.store.ListPublishedPosts(e.Request.Context(), limit)
	if err != nil {
		slog.Error("h.store.ListPublishedPosts()", "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"posts": posts})
}

// GetPost - A single published post by its slug, with comments
func (h *BlogHandler) GetPost(e *core.RequestEvent) error {
	slug := e.Request.PathValue("slug")
	ctx := e.Request.Context()

	post, err := h.store.FindPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, status.ErrPostNotFound) {
			return apis.NewNotFoundError("Post not found", nil)
		}
		slog.Error("h.store.FindPostBySlug()", "slug", slug, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	comments, err := h.store.ListPostComments(ctx, post.ID)
	if err != nil {
		slog.Error("h.store.ListPostComments()", "post_id", post.ID, "error", err)
		comments = nil
	}

	return e.JSON(http.StatusOK, map[string]any{
		"post":     post,
		"comments": comments,
	})
}

// CreateComment - Add an authenticated comment to a published post
func (h *BlogHandler) CreateComment(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	slug := e.Request.PathValue("slug")

	var req struct {
		Content string `json:"content"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return apis.NewBadRequestError("Comment content is required", nil)
	}
	ctx := e.Request.Context()

	post, err := h.store.FindPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, status.ErrPostNotFound) {
			return apis.NewNotFoundError("Post not found", nil)
		}
		slog.Error("h.store.FindPostBySlug()", "slug", slug, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	comment := &models.BlogComment{
		PostID:  post.ID,
		UserID:  e.Auth.Id,
		Content: req.Content,
	}
	id, err := h.store.CreateComment(ctx, comment)
	if err != nil {
		slog.Error("h.store.CreateComment()", "post_id", post.ID, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}
	comment.ID = id

	return e.JSON(http.StatusCreated, comment)
}
