package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Image is a concrete CMS media item.
type Image struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Photo is one entry of a room's ordered photo sequence.
type Photo struct {
	Caption string   `json:"caption,omitempty"`
	RawTags string   `json:"raw_tags,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Image   *Image   `json:"image,omitempty"` // nil when the media reference could not be resolved
}

// HasImage reports whether the photo has a displayable URL.
func (p *Photo) HasImage() bool {
	return p.Image != nil && p.Image.URL != ""
}

// HasTag reports whether the photo carries tag exactly (case-sensitive).
func (p *Photo) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PhotoRefKind discriminates the shapes an ACF image field can take.
type PhotoRefKind int

const (
	// PhotoRefEmpty is an unset field (null, false or "").
	PhotoRefEmpty PhotoRefKind = iota
	// PhotoRefID is a bare media id that still has to be fetched.
	PhotoRefID
	// PhotoRefObject is a fully expanded image object.
	PhotoRefObject
)

// String returns a readable kind name.
func (k PhotoRefKind) String() string {
	switch k {
	case PhotoRefID:
		return "id"
	case PhotoRefObject:
		return "object"
	default:
		return "empty"
	}
}

// PhotoRef is the tagged union behind ACF image fields. Depending on the field's
// return format the CMS sends an object, a bare numeric id (number or string),
// or false/null when nothing is selected.
type PhotoRef struct {
	Kind  PhotoRefKind
	ID    int64
	Image *Image
}

// rawImage is the ACF "image array" shape.
type rawImage struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
	Title  string `json:"title"`
}

// UnmarshalJSON decodes any of the supported shapes.
func (r *PhotoRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = PhotoRef{}

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		return nil
	case data[0] == '{':
		var img rawImage
		if err := json.Unmarshal(data, &img); err != nil {
			return fmt.Errorf("decode image object: %w", err)
		}
		r.Kind = PhotoRefObject
		r.ID = img.ID
		r.Image = &Image{
			ID:     img.ID,
			URL:    img.URL,
			Width:  img.Width,
			Height: img.Height,
			Alt:    img.Alt,
			Title:  img.Title,
		}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("image reference %q is not a media id", s)
		}
		r.Kind = PhotoRefID
		r.ID = id
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode image reference: %w", err)
		}
		r.Kind = PhotoRefID
		r.ID = id
		return nil
	}
}

// MarshalJSON encodes the reference in its own shape.
func (r PhotoRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case PhotoRefObject:
		return json.Marshal(r.Image)
	case PhotoRefID:
		return json.Marshal(r.ID)
	default:
		return []byte("false"), nil
	}
}
