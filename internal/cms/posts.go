package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/domain"
)

// WordPress dates carry no zone; "date" is site-local wall time.
const wpDateLayout = "2006-01-02T15:04:05"

// ListPosts fetches every published post, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	err := c.paginate(ctx, "/posts", nil, func(body []byte) error {
		var page []rawPost
		if err := json.Unmarshal(body, &page); err != nil {
			return err
		}
		for i := range page {
			posts = append(posts, page[i].toPost())
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("listPosts", 0, err)
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, wrapError("getPost", id, ErrNotFound)
	}

	var raw rawPost
	if _, err := c.getJSON(ctx, fmt.Sprintf("/posts/%d", id), nil, &raw); err != nil {
		return nil, wrapError("getPost", id, err)
	}
	if raw.ID == 0 {
		return nil, wrapError("getPost", id, fmt.Errorf("%w: post without id", ErrBadResponse))
	}

	post := raw.toPost()
	return &post, nil
}

type rawPost struct {
	ID      int64    `json:"id"`
	Date    string   `json:"date"`
	Slug    string   `json:"slug"`
	Title   rendered `json:"title"`
	Excerpt rendered `json:"excerpt"`
	Content rendered `json:"content"`
}

func (p *rawPost) toPost() domain.Post {
	date, _ := time.Parse(wpDateLayout, p.Date)
	return domain.Post{
		ID:          p.ID,
		Date:        date,
		Slug:        p.Slug,
		TitleHTML:   p.Title.Rendered,
		ExcerptHTML: p.Excerpt.Rendered,
		ContentHTML: p.Content.Rendered,
	}
}
