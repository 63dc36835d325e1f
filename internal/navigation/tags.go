package navigation

import (
	"regexp"
	"slices"
	"strings"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tags are free text separated by commas (ASCII or full width) and whitespace.
var tagSeparators = regexp.MustCompile(`[,、，\s]+`)

// ParseTags splits a raw tag field into labels. Empty tokens are dropped,
// duplicates are kept once and the original order is preserved. Labels are
// NFC-normalised so that composed and decomposed kana compare equal.
func ParseTags(raw string) []string {
	fields := tagSeparators.Split(norm.NFC.String(raw), -1)

	tags := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tags = append(tags, f)
	}
	return tags
}

// NormalizeTag prepares a decoded URL tag for matching.
func NormalizeTag(tag string) string {
	return norm.NFC.String(strings.TrimSpace(tag))
}

// TaggedPhoto is one entry of the tag-filtered sequence.
type TaggedPhoto struct {
	Index     int           `json:"index"` // 1-based within the filtered sequence
	RoomNo    string        `json:"room_no"`
	RoomTitle string        `json:"room_title,omitempty"`
	RoomBy    string        `json:"room_by,omitempty"`
	PhotoBy   string        `json:"photo_by,omitempty"`
	Slot      int           `json:"slot"` // position inside the owning room
	Photo     *domain.Photo `json:"photo"`
}

// FilterByTag flattens the catalog in its own order, room by room and photo by
// photo, keeping photos that carry tag.
func FilterByTag(catalog *domain.Catalog, tag string) []TaggedPhoto {
	tag = NormalizeTag(tag)
	if tag == "" || catalog == nil {
		return nil
	}

	var out []TaggedPhoto
	for i := range catalog.Rooms {
		room := &catalog.Rooms[i]
		for j := range room.Photos {
			photo := &room.Photos[j]
			if !photo.HasTag(tag) {
				continue
			}
			out = append(out, TaggedPhoto{
				Index:     len(out) + 1,
				RoomNo:    room.RoomNo,
				RoomTitle: room.Title,
				RoomBy:    room.RoomBy,
				PhotoBy:   room.PhotoBy,
				Slot:      j + 1,
				Photo:     photo,
			})
		}
	}
	return out
}

// TagDestination is an index into a tag sequence or the tag listing sentinel.
type TagDestination struct {
	Index    int  `json:"index,omitempty"`
	Terminal bool `json:"terminal"`
}

// TagNav is the result of resolving a position in a tag sequence.
type TagNav struct {
	Tag   string
	Index int
	Total int
	Photo TaggedPhoto
	Prev  TagDestination
	Next  TagDestination
}

// TagResolver resolves positions in a tag-filtered sequence. At the ends it
// either stops at the tag listing or, with Wrap, continues at the other end.
type TagResolver struct {
	Wrap bool
}

// Resolve returns the photo at index (1-based) of the sequence for tag together
// with its neighbours. Unknown tags and out of range indexes are not found.
func (r TagResolver) Resolve(catalog *domain.Catalog, tag string, index int) (TagNav, error) {
	seq := FilterByTag(catalog, tag)
	if len(seq) == 0 {
		return TagNav{}, domainerrors.NotFoundf("no photos tagged %q", tag)
	}
	if index < 1 || index > len(seq) {
		return TagNav{}, domainerrors.NotFoundf("tag %q has no photo %d", tag, index)
	}

	nav := TagNav{
		Tag:   NormalizeTag(tag),
		Index: index,
		Total: len(seq),
		Photo: seq[index-1],
	}

	switch {
	case index > 1:
		nav.Prev = TagDestination{Index: index - 1}
	case r.Wrap:
		nav.Prev = TagDestination{Index: len(seq)}
	default:
		nav.Prev = TagDestination{Terminal: true}
	}

	switch {
	case index < len(seq):
		nav.Next = TagDestination{Index: index + 1}
	case r.Wrap:
		nav.Next = TagDestination{Index: 1}
	default:
		nav.Next = TagDestination{Terminal: true}
	}

	return nav, nil
}

// TagSummary is one row of the tag index.
type TagSummary struct {
	Tag       string        `json:"tag"`
	Count     int           `json:"count"`
	RoomNo    string        `json:"room_no,omitempty"`
	Thumbnail *domain.Image `json:"thumbnail,omitempty"`
}

// TagIndex counts every tag in the catalog. The thumbnail is the first photo in
// catalog order that carries the tag and has an image. Tags used fewer than
// minCount times are left out. Rows are ordered with Japanese collation so kana
// and kanji tags sort the way a reader expects.
func TagIndex(catalog *domain.Catalog, minCount int) []TagSummary {
	if catalog == nil {
		return nil
	}

	byTag := make(map[string]*TagSummary)
	var order []string
	for i := range catalog.Rooms {
		room := &catalog.Rooms[i]
		for j := range room.Photos {
			photo := &room.Photos[j]
			for _, tag := range photo.Tags {
				s, ok := byTag[tag]
				if !ok {
					s = &TagSummary{Tag: tag}
					byTag[tag] = s
					order = append(order, tag)
				}
				s.Count++
				if s.Thumbnail == nil && photo.HasImage() {
					s.Thumbnail = photo.Image
					s.RoomNo = room.RoomNo
				}
			}
		}
	}

	out := make([]TagSummary, 0, len(order))
	for _, tag := range order {
		if s := byTag[tag]; s.Count >= minCount {
			out = append(out, *s)
		}
	}

	// Collators are not safe for concurrent use.
	col := collate.New(language.Japanese)
	slices.SortStableFunc(out, func(a, b TagSummary) int {
		return col.CompareString(a.Tag, b.Tag)
	})
	return out
}
