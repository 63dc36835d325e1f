package watcher

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 100*time.Millisecond, opts.SettleDelay, "Default settle delay should be 100ms")
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store")
	assert.Contains(t, opts.IgnorePatterns, "*.swp")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		SettleDelay:    200 * time.Millisecond,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, 200*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/tpl/.hidden", true},
		{"hidden directory", "/tpl/.git/config", true},
		{"DS_Store", "/tpl/.DS_Store", true},
		{"vim swap", "/tpl/room.html.swp", true},
		{"backup", "/tpl/room.html~", true},
		{"template", "/tpl/room.html", false},
		{"nested template", "/tpl/partials/footer.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_Wants(t *testing.T) {
	opts := Options{Extensions: []string{".html"}}
	assert.True(t, opts.wants("/tpl/room.html"))
	assert.True(t, opts.wants("/tpl/ROOM.HTML"))
	assert.False(t, opts.wants("/tpl/style.css"))

	all := Options{}
	assert.True(t, all.wants("/tpl/style.css"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want EventType
		ok   bool
	}{
		{fsnotify.Create, EventChanged, true},
		{fsnotify.Write, EventChanged, true},
		{fsnotify.Remove, EventRemoved, true},
		{fsnotify.Rename, EventRemoved, true},
		{fsnotify.Chmod, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, ok := classify(tt.op)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
				assert.NotEqual(t, "unknown", got.String())
			}
		})
	}
}
