package service

import (
	"context"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/richtext"
)

// PostReader is the part of the catalog service the blog reads.
type PostReader interface {
	Posts(ctx context.Context) ([]domain.Post, error)
	Post(ctx context.Context, id int64) (*domain.Post, error)
}

const excerptRunes = 120

// PostSummary is one row of the blog listing.
type PostSummary struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"` // 2026.01.18
	TitleHTML string `json:"title_html"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// PostView is a single post ready to render.
type PostView struct {
	domain.Post
	Title   string `json:"title"` // TitleHTML without markup, for <title>
	Date    string `json:"display_date"`
	Summary string `json:"summary,omitempty"`
}

// BlogService serves blog posts.
type BlogService struct {
	posts PostReader
}

// NewBlogService creates a blog service.
func NewBlogService(posts PostReader) *BlogService {
	return &BlogService{posts: posts}
}

// List returns every post, newest first.
func (s *BlogService) List(ctx context.Context) ([]PostSummary, error) {
	posts, err := s.posts.Posts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		out = append(out, PostSummary{
			ID:        p.ID,
			Date:      p.DisplayDate(),
			TitleHTML: p.TitleHTML,
			Title:     richtext.StripTags(p.TitleHTML),
			Excerpt:   richtext.Truncate(richtext.StripTags(p.ExcerptHTML), excerptRunes),
		})
	}
	return out, nil
}

// Get returns one post.
func (s *BlogService) Get(ctx context.Context, id int64) (*PostView, error) {
	post, err := s.posts.Post(ctx, id)
	if err != nil {
		return nil, err
	}

	title := richtext.StripTags(post.TitleHTML)
	summary := richtext.StripTags(post.ExcerptHTML)
	if summary == "" {
		summary = richtext.StripTags(post.ContentHTML)
	}
	return &PostView{
		Post:    *post,
		Title:   title,
		Date:    post.DisplayDate(),
		Summary: richtext.Truncate(summary, excerptRunes),
	}, nil
}

// Markdown returns the post body as Markdown, headed by its title and date.
func (s *BlogService) Markdown(ctx context.Context, id int64) (string, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	md := "# " + view.Title + "\n\n"
	if view.Date != "" {
		md += view.Date + "\n\n"
	}
	return md + richtext.Markdown(view.ContentHTML) + "\n", nil
}
