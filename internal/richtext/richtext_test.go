package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "room and room.", "room and room."},
		{"entities", "Tom &amp; Jerry&#8217;s room", "Tom & Jerry’s room"},
		{"inline markup", "<strong>new</strong> photos", "new photos"},
		{"paragraphs", "<p>first</p><p>second</p>", "first second"},
		{"line break", "one<br>two", "one two"},
		{"script dropped", "<p>hi</p><script>alert(1)</script>", "hi"},
		{"mixed markup and entities", "<b>Back</b> &amp; <p>better</p>", "Back & better"},
		{"nested inline", `<a href="/rooms"><em>room</em>*12</a>`, "room*12"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripTags(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<")
			assert.Equal(t, tt.want, tokenText(tt.in), "tokenizer path")
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "部屋と部…", Truncate("部屋と部屋の写真", 4))
	assert.Equal(t, "", Truncate("anything", 0))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(`<h2>Back</h2><p>room and room. is <strong>back</strong>.</p><p><a href="https://www.roomandroom.org/rooms">rooms</a></p>`)

	assert.Contains(t, md, "## Back")
	assert.Contains(t, md, "**back**")
	assert.Contains(t, md, "[rooms](https://www.roomandroom.org/rooms)")
	assert.False(t, strings.HasSuffix(md, "\n"))
	assert.Equal(t, "", Markdown("  "))
}
