package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"ravehub/internal/status"
	"ravehub/models"
)

// ListPublishedPosts returns published blog posts, newest first.
func (s *Store) ListPublishedPosts(ctx context.Context, limit int) ([]*models.BlogPost, error) {
	records, err := s.app.FindRecordsByFilter(CollectionBlogPosts,
		"status = 'published'", "-published_at", limit, 0)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]*models.BlogPost, 0, len(records))
	for _, r := range records {
		posts = append(posts, blogPostFromRecord(r))
	}
	return posts, nil
}

// FindPostBySlug loads a published post by its slug.
func (s *Store) FindPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	records, err := s.app.FindRecordsByFilter(CollectionBlogPosts,
		"slug = {:slug} && status = 'published'", "", 1, 0,
		map[string]any{"slug": slug})
	if err != nil || len(records) == 0 {
		return nil, status.ErrPostNotFound
	}
	return blogPostFromRecord(records[0]), nil
}

// CreateComment adds a comment to a post.
func (s *Store) CreateComment(ctx context.Context, c *models.BlogComment) (string, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionBlogComments)
	if err != nil {
		return "", err
	}

	record := core.NewRecord(collection)
	record.Set("post_id", c.PostID)
	record.Set("user_id", c.UserID)
	record.Set("content", c.Content)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return "", fmt.Errorf("save comment: %w", err)
	}
	return record.Id, nil
}

// ListPostComments returns a post's comments, oldest first.
func (s *Store) ListPostComments(ctx context.Context, postID string) ([]*models.BlogComment, error) {
	records, err := s.app.FindRecordsByFilter(CollectionBlogComments,
		"post_id = {:postId}", "created", 0, 0,
		map[string]any{"postId": postID})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]*models.BlogComment, 0, len(records))
	for _, r := range records {
		comments = append(comments, &models.BlogComment{
			ID:        r.Id,
			PostID:    r.GetString("post_id"),
			UserID:    r.GetString("user_id"),
			Content:   r.GetString("content"),
			CreatedAt: r.GetDateTime("created").Time(),
		})
	}
	return comments, nil
}

func blogPostFromRecord(r *core.Record) *models.BlogPost {
	post := &models.BlogPost{
		ID:        r.Id,
		Title:     r.GetString("title"),
		Slug:      r.GetString("slug"),
		Excerpt:   r.GetString("excerpt"),
		Content:   r.GetString("content"),
		AuthorID:  r.GetString("author_id"),
		Status:    r.GetString("status"),
		Tags:      r.GetStringSlice("tags"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
	if dt := r.GetDateTime("published_at"); !dt.IsZero() {
		t := dt.Time()
		post.PublishedAt = &t
	}
	return post
}
