package cms

import (
	"context"
	"fmt"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/richtext"
)

// GetMedia resolves a bare media id to an image.
func (c *Client) GetMedia(ctx context.Context, id int64) (*domain.Image, error) {
	if id <= 0 {
		return nil, wrapError("getMedia", id, ErrNotFound)
	}

	var raw rawMedia
	if _, err := c.getJSON(ctx, fmt.Sprintf("/media/%d", id), nil, &raw); err != nil {
		return nil, wrapError("getMedia", id, err)
	}
	if raw.SourceURL == "" {
		return nil, wrapError("getMedia", id, fmt.Errorf("%w: media has no source_url", ErrBadResponse))
	}

	return &domain.Image{
		ID:     raw.ID,
		URL:    raw.SourceURL,
		Width:  raw.MediaDetails.Width,
		Height: raw.MediaDetails.Height,
		Alt:    raw.AltText,
		Title:  richtext.StripTags(raw.Title.Rendered),
	}, nil
}

type rawMedia struct {
	ID           int64    `json:"id"`
	SourceURL    string   `json:"source_url"`
	AltText      string   `json:"alt_text"`
	Title        rendered `json:"title"`
	MediaDetails struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"media_details"`
}
