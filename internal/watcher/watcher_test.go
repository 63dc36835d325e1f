package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_BatchesSettledChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "partials"), 0o755))

	w, err := New(slog.New(slog.DiscardHandler), Options{
		Extensions:  []string{".html"},
		SettleDelay: 150 * time.Millisecond,
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(dir))

	batches := make(chan []Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(b []Event) { batches <- b }) }()

	room := filepath.Join(dir, "room.html")
	footer := filepath.Join(dir, "partials", "footer.html")
	for i := range 3 {
		require.NoError(t, os.WriteFile(room, []byte{byte('a' + i)}, 0o644))
	}
	require.NoError(t, os.WriteFile(footer, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".room.html.swp"), []byte("x"), 0o644))

	select {
	case batch := <-batches:
		var paths []string
		for _, ev := range batch {
			assert.Equal(t, EventChanged, ev.Type)
			paths = append(paths, ev.Path)
		}
		assert.Equal(t, []string{footer, room}, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no batch delivered")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_WatchMissingRoot(t *testing.T) {
	w, err := New(slog.New(slog.DiscardHandler), Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}
