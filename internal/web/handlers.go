// Package web serves the server-rendered site: home, rooms, tags, blog and the
// crawler files.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/roomandroom/roomandroom-server/internal/config"
	"github.com/roomandroom/roomandroom-server/internal/domain"
	domainerrors "github.com/roomandroom/roomandroom-server/internal/errors"
	"github.com/roomandroom/roomandroom-server/internal/logger"
	"github.com/roomandroom/roomandroom-server/internal/navigation"
	"github.com/roomandroom/roomandroom-server/internal/service"
)

// Handler serves the HTML pages.
type Handler struct {
	gallery  *service.GalleryService
	blog     *service.BlogService
	sitemap  *service.SitemapService
	site     *config.SiteConfig
	renderer *Renderer
	logger   *slog.Logger
}

// NewHandler creates the page handler.
func NewHandler(
	gallery *service.GalleryService,
	blog *service.BlogService,
	sitemap *service.SitemapService,
	site *config.SiteConfig,
	renderer *Renderer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		gallery:  gallery,
		blog:     blog,
		sitemap:  sitemap,
		site:     site,
		renderer: renderer,
		logger:   logger,
	}
}

// Register mounts the pages on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Get("/about", h.handleAbout)

	r.Get("/rooms", h.handleRooms)
	r.Get("/rooms/{roomNo}", h.handleRoomEntry)
	r.Get("/rooms/{roomNo}/{slot}", h.handleRoom)

	r.Get("/tags", h.handleTags)
	r.Get("/tags/{tag}", h.handleTagEntry)
	r.Get("/tags/{tag}/{index}", h.handleTag)

	r.Get("/blog", h.handleBlog)
	r.Get("/blog/{id}", h.handlePost)

	r.Get("/robots.txt", h.handleRobots)
	r.Get("/sitemap.xml", h.handleSitemap)
}

// HostRedirect sends requests for a retired host to the canonical base URL
// with a permanent redirect, keeping path and query.
func HostRedirect(site *config.SiteConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !site.IsRedirectHost(r.Host) {
				next.ServeHTTP(w, r)
				return
			}
			target := site.BaseURL + r.URL.EscapedPath()
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.Site = h.site
	if err := h.renderer.Render(w, status, name, p); err != nil {
		logger.FromContext(r.Context(), h.logger).Error("render failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail renders the error page for a lookup. Not found and upstream failures
// are a 404 (the page cannot be shown from what the site knows); anything
// else is a 500. Everything but a plain not found is logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), h.logger)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainerrors.ErrUpstream):
		log.Warn("content unavailable", "path", r.URL.Path, "error", err)
		status = http.StatusNotFound
	default:
		log.Error("page failed", "path", r.URL.Path, "error", err)
	}
	h.renderError(w, r, status)
}

// listingFailed decides whether a listing error degrades to the empty state.
func (h *Handler) listingFailed(w http.ResponseWriter, r *http.Request, err error) bool {
	if errors.Is(err, domainerrors.ErrUpstream) {
		logger.FromContext(r.Context(), h.logger).Warn("listing unavailable, showing empty state",
			"path", r.URL.Path, "error", err)
		return false
	}
	h.fail(w, r, err)
	return true
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	msg := "ページが見つかりません。"
	if status != http.StatusNotFound {
		msg = "エラーが発生しました。時間をおいて再度お試しください。"
	}
	h.render(w, r, status, pageError, page{
		Title: strconv.Itoa(status),
		Body:  errorView{Status: status, Message: msg},
	})
}

// NotFound renders the HTML 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageHome, page{Section: "home"})
}

func (h *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageAbout, page{Title: "ABOUT", Section: "about"})
}

func (h *Handler) handleRooms(w http.ResponseWriter, r *http.Request) {
	flags := ParseFlags(r.URL.Query())

	view := roomsView{Order: flags.Order}
	toggle := Flags{Order: domain.OrderDesc}
	if flags.Order == domain.OrderDesc {
		toggle.Order = domain.OrderAsc
	}
	view.ToggleHref = roomsListing(toggle)

	rooms, err := h.gallery.Rooms(r.Context(), flags.Order)
	if err != nil && h.listingFailed(w, r, err) {
		return
	}
	listFlags := Flags{Order: flags.Order}
	for _, room := range rooms {
		view.Rooms = append(view.Rooms, roomRow{
			RoomSummary: room,
			Href:        "/rooms/" + url.PathEscape(room.RoomNo) + "/" + room.First + listFlags.Query(),
		})
	}

	h.render(w, r, http.StatusOK, pageRooms, page{Title: "ROOMS", Section: "rooms", Body: view})
}

func (h *Handler) handleRoomEntry(w http.ResponseWriter, r *http.Request) {
	roomNo := pathParam(r, "roomNo")
	slot, err := h.gallery.EntrySlot(r.Context(), roomNo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target := "/rooms/" + url.PathEscape(roomNo) + "/" + slot + ParseFlags(r.URL.Query()).Query()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *Handler) handleRoom(w http.ResponseWriter, r *http.Request) {
	flags := ParseFlags(r.URL.Query())
	roomNo := pathParam(r, "roomNo")

	nav, err := h.gallery.Room(r.Context(), flags.Order, roomNo, chi.URLParam(r, "slot"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	here := RoomPath(nav.Position.RoomNo, nav.Position.Slot)
	view := roomView{
		Room:       nav.Room,
		Photo:      nav.Photo,
		Profile:    nav.IsProfile(),
		Slot:       nav.Position.Slot,
		PhotoCount: nav.PhotoCount,
		Credits:    roomCredits(nav.Room.RoomBy, nav.Room.PhotoBy),
		PrevHref:   roomLink(nav.Prev, flags),
		NextHref:   roomLink(nav.Next, flags),
		BackHref:   roomsListing(flags),
		ZoomHref:   here + flags.ToggleZoom().Query(),
		PlayHref:   here + flags.ToggleAutoplay().Query(),
		Flags:      flags,
	}

	p := page{
		Title:   fmt.Sprintf("room*%s", nav.Room.RoomNo),
		Section: "rooms",
		Body:    view,
	}
	if flags.Autoplay && !nav.Next.Terminal {
		p.Refresh, p.Delay = view.NextHref, autoplayDelay
	}
	h.render(w, r, http.StatusOK, pageRoom, p)
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.gallery.Tags(r.Context())
	if err != nil && h.listingFailed(w, r, err) {
		return
	}
	rows := make([]tagRow, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, tagRow{TagSummary: t, Href: TagPath(t.Tag, 1)})
	}
	h.render(w, r, http.StatusOK, pageTags, page{Title: "TAGS", Section: "tags", Body: rows})
}

func (h *Handler) handleTagEntry(w http.ResponseWriter, r *http.Request) {
	tag := navigation.NormalizeTag(pathParam(r, "tag"))
	if tag == "" {
		h.renderError(w, r, http.StatusNotFound)
		return
	}
	flags := ParseFlags(r.URL.Query())
	flags.Order = domain.OrderAsc
	http.Redirect(w, r, TagPath(tag, 1)+flags.Query(), http.StatusTemporaryRedirect)
}

func (h *Handler) handleTag(w http.ResponseWriter, r *http.Request) {
	flags := ParseFlags(r.URL.Query())
	flags.Order = domain.OrderAsc

	nav, err := h.gallery.Tag(r.Context(), pathParam(r, "tag"), chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	here := TagPath(nav.Tag, nav.Index)
	view := tagView{
		Tag:      nav.Tag,
		Index:    nav.Index,
		Total:    nav.Total,
		Photo:    nav.Photo,
		Credits:  tagCredits(nav.Photo.RoomBy, nav.Photo.PhotoBy),
		RoomHref: RoomPath(nav.Photo.RoomNo, 1),
		PrevHref: tagLink(nav.Tag, nav.Prev, flags),
		NextHref: tagLink(nav.Tag, nav.Next, flags),
		ZoomHref: here + flags.ToggleZoom().Query(),
		PlayHref: here + flags.ToggleAutoplay().Query(),
		Flags:    flags,
	}

	p := page{Title: nav.Tag, Section: "tags", Body: view}
	if flags.Autoplay && !nav.Next.Terminal {
		p.Refresh, p.Delay = view.NextHref, autoplayDelay
	}
	h.render(w, r, http.StatusOK, pageTag, p)
}

func (h *Handler) handleBlog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.List(r.Context())
	if err != nil && h.listingFailed(w, r, err) {
		return
	}
	rows := make([]postRow, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, postRow{PostSummary: p, Href: "/blog/" + strconv.FormatInt(p.ID, 10)})
	}
	h.render(w, r, http.StatusOK, pageBlog, page{Title: "BLOG", Section: "blog", Body: rows})
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderError(w, r, http.StatusNotFound)
		return
	}

	view, err := h.blog.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, pagePost, page{Title: view.Title, Section: "blog", Body: view})
}

func (h *Handler) handleRobots(w http.ResponseWriter, _ *http.Request) {
	var b strings.Builder
	b.WriteString("User-Agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /private/\n\n")
	b.WriteString("Sitemap: " + h.site.BaseURL + "/sitemap.xml\n")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (h *Handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	set := h.sitemap.Build(r.Context())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := set.WriteXML(w); err != nil {
		logger.FromContext(r.Context(), h.logger).Error("write sitemap", "error", err)
	}
}

// pathParam returns a decoded path segment. chi routes on RawPath when the
// request has one, and only then is the segment still escaped.
func pathParam(r *http.Request, name string) string {
	return DecodeSegment(r.URL, chi.URLParam(r, name))
}

// DecodeSegment decodes a router path segment taken from u. Segments routed
// on the decoded Path are returned unchanged.
func DecodeSegment(u *url.URL, segment string) string {
	if u == nil || u.RawPath == "" {
		return segment
	}
	if v, err := url.PathUnescape(segment); err == nil {
		return v
	}
	return segment
}
