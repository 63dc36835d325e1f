package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/service"
)

func TestPrintRooms(t *testing.T) {
	var buf bytes.Buffer
	err := printRooms(&buf, []service.RoomSummary{
		{RoomNo: "1", Title: "first", RoomBy: "mio", PhotoBy: "mio", PhotoCount: 2, First: "00"},
		{RoomNo: "12", Title: "second", PhotoCount: 0, First: "00"},
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "ROOM")
	assert.Contains(t, string(lines[1]), "first")
	assert.Contains(t, string(lines[2]), "12")
}

func TestPrintTagPhotos(t *testing.T) {
	var buf bytes.Buffer
	err := printTagPhotos(&buf, []navigation.TaggedPhoto{
		{Index: 1, RoomNo: "1", Slot: 2, Photo: &domain.Photo{Caption: "sofa"}},
		{Index: 2, RoomNo: "12", Slot: 1, Photo: &domain.Photo{Caption: "desk"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"INDEX", "ROOM", "SLOT", "CAPTION"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"01", "1", "02", "sofa"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"02", "12", "01", "desk"}, strings.Fields(lines[2]))
}

func TestTagDestination(t *testing.T) {
	assert.Equal(t, "terminal", tagDestination(navigation.TagDestination{Terminal: true}))
	assert.Equal(t, "03", tagDestination(navigation.TagDestination{Index: 3}))
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "nav needs two args", args: []string{"nav", "1"}},
		{name: "tag-nav needs two args", args: []string{"tag-nav", "木"}},
		{name: "rooms takes none", args: []string{"rooms", "extra"}},
		{name: "post needs an id", args: []string{"post"}},
		{name: "tags takes at most one tag", args: []string{"tags", "木", "照明"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			assert.Error(t, rootCmd.Execute())
			assert.Nil(t, injector, "argument errors must not build the container")
		})
	}
}
