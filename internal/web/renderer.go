package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/watcher"
)

//go:embed templates/*.html
var embedded embed.FS

const layoutFile = "layout.html"

// Page names. Each is parsed together with the layout.
const (
	pageHome  = "home"
	pageRooms = "rooms"
	pageRoom  = "room"
	pageTags  = "tags"
	pageTag   = "tag"
	pageBlog  = "blog"
	pagePost  = "post"
	pageAbout = "about"
	pageError = "error"
)

var pageNames = []string{pageHome, pageRooms, pageRoom, pageTags, pageTag, pageBlog, pagePost, pageAbout, pageError}

var funcs = template.FuncMap{
	"pad": navigation.PadSlot,
	// CMS markup is authored by the site editors.
	"trusted": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
}

// Renderer executes the page templates. Templates come from the binary, or
// from a directory on disk during development, in which case they can be
// re-parsed while the server runs.
type Renderer struct {
	logger *slog.Logger
	fsys   fs.FS
	dir    string

	mu    sync.RWMutex
	pages map[string]*template.Template

	stopMu sync.Mutex
	stop   context.CancelFunc
	done   chan struct{}
}

// NewRenderer parses every page. dir overrides the embedded templates when set.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{logger: logger, dir: dir}
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		r.fsys = sub
	} else {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template dir %s is not a directory", dir)
		}
		r.fsys = os.DirFS(dir)
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all pages. The previous set stays in use when parsing fails.
func (r *Renderer) Reload() error {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(r.fsys, layoutFile, name+".html")
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Render writes page with status. The page is executed into a buffer first
// so a template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Watch re-parses the templates whenever files under the template directory
// settle, and reports the changed file names to onReload. It does nothing for
// embedded templates. The watch runs until Shutdown.
func (r *Renderer) Watch(ctx context.Context, onReload func(names []string)) error {
	if r.dir == "" {
		return nil
	}

	w, err := watcher.New(r.logger, watcher.Options{
		Extensions:  []string{".html"},
		SettleDelay: 200 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	if err := w.Watch(r.dir); err != nil {
		_ = w.Close()
		return err
	}

	r.stopMu.Lock()
	defer r.stopMu.Unlock()
	if r.stop != nil {
		_ = w.Close()
		return fmt.Errorf("templates already watched")
	}
	ctx, r.stop = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		defer w.Close()
		_ = w.Run(ctx, func(batch []watcher.Event) {
			names := make([]string, 0, len(batch))
			for _, ev := range batch {
				names = append(names, filepath.Base(ev.Path))
			}
			if err := r.Reload(); err != nil {
				r.logger.Error("template reload failed", "files", names, "error", err)
				return
			}
			r.logger.Info("templates reloaded", "files", names)
			if onReload != nil {
				onReload(names)
			}
		})
	}()

	r.logger.Info("watching templates", "dir", r.dir)
	return nil
}

// Shutdown stops the template watch, if any.
func (r *Renderer) Shutdown() error {
	r.stopMu.Lock()
	stop, done := r.stop, r.done
	r.stopMu.Unlock()

	if stop == nil {
		return nil
	}
	stop()
	<-done
	return nil
}
