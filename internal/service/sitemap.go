package service

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roomandroom/roomandroom-server/internal/domain"
	"golang.org/x/sync/errgroup"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

var staticPaths = []string{"", "/rooms", "/about", "/blog", "/tags"}

// URLSet is the sitemap document.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapService builds sitemap.xml from the catalog and the blog.
type SitemapService struct {
	catalog CatalogReader
	posts   PostReader
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewSitemapService creates a sitemap service for baseURL.
func NewSitemapService(catalog CatalogReader, posts PostReader, baseURL string, logger *slog.Logger) *SitemapService {
	return &SitemapService{
		catalog: catalog,
		posts:   posts,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Build lists static pages, the first photo of every room and every post. Rooms
// and posts load concurrently; a source that fails contributes no paths.
func (s *SitemapService) Build(ctx context.Context) *URLSet {
	var roomPaths, postPaths []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cat, err := s.catalog.Catalog(gctx, domain.OrderAsc)
		if err != nil {
			s.logger.Warn("sitemap without rooms", "error", err)
			return nil
		}
		for i := range cat.Rooms {
			roomPaths = append(roomPaths, "/rooms/"+cat.Rooms[i].RoomNo+"/01")
		}
		return nil
	})
	g.Go(func() error {
		posts, err := s.posts.Posts(gctx)
		if err != nil {
			s.logger.Warn("sitemap without posts", "error", err)
			return nil
		}
		for i := range posts {
			postPaths = append(postPaths, "/blog/"+strconv.FormatInt(posts[i].ID, 10))
		}
		return nil
	})
	_ = g.Wait()

	lastMod := s.now().UTC().Format(time.RFC3339)
	set := &URLSet{XMLNS: sitemapNS}
	for _, group := range [][]string{staticPaths, roomPaths, postPaths} {
		for _, path := range group {
			set.URLs = append(set.URLs, SitemapURL{
				Loc:        s.baseURL + path,
				LastMod:    lastMod,
				ChangeFreq: changeFreq(path),
				Priority:   priority(path),
			})
		}
	}
	return set
}

func changeFreq(path string) string {
	if strings.HasPrefix(path, "/rooms/") || strings.HasPrefix(path, "/blog/") {
		return "monthly"
	}
	return "weekly"
}

func priority(path string) string {
	if path == "" {
		return "1.0"
	}
	return "0.8"
}

// WriteXML encodes set with the XML declaration.
func (set *URLSet) WriteXML(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
