package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roomandroom/roomandroom-server/internal/validation"
	"gopkg.in/yaml.v3"
)

// SiteConfig is the editorial content that does not live in the CMS.
type SiteConfig struct {
	Name          string     `yaml:"name" validate:"required"`
	BaseURL       string     `yaml:"base_url" validate:"required,http_url"`
	Description   string     `yaml:"description"`
	NoIndex       bool       `yaml:"noindex"`
	RedirectHosts []string   `yaml:"redirect_hosts" validate:"dive,hostname_rfc1123"`
	MinTagCount   int        `yaml:"min_tag_count" validate:"gte=1"`
	Copyright     string     `yaml:"copyright"`
	News          []NewsItem `yaml:"news" validate:"dive"`
	About         []string   `yaml:"about"`
	Social        []Social   `yaml:"social" validate:"dive"`
}

// NewsItem is one line on the home page.
type NewsItem struct {
	Text string `yaml:"text" validate:"required"`
	Link string `yaml:"link"`
}

// Social is a footer link.
type Social struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,http_url"`
}

// DefaultSite returns the built-in site content.
func DefaultSite() *SiteConfig {
	return &SiteConfig{
		Name:          "room and room.",
		BaseURL:       "https://www.roomandroom.org",
		Description:   "room and room.",
		NoIndex:       true,
		RedirectHosts: []string{"roomandroom.pages.dev"},
		MinTagCount:   2,
		Copyright:     "Copyright © 2026 room and room. All right reserved.",
		News: []NewsItem{
			{Text: "2026.1.18　room and room. is back!(This is a beta release. click here!)", Link: "/rooms"},
		},
		About: []string{
			"room and room. is a photo archive of rooms and the people who live in them.",
		},
		Social: []Social{
			{Name: "X", URL: "https://x.com/roomandroom"},
			{Name: "Instagram", URL: "https://www.instagram.com/roomandroom/"},
			{Name: "Threads", URL: "https://www.threads.net/@roomandroom"},
		},
	}
}

// LoadSite reads path over the defaults. An empty path returns the defaults.
func LoadSite(path string) (*SiteConfig, error) {
	site := DefaultSite()
	if path == "" {
		return site, nil
	}

	data, err := os.ReadFile(path) //#nosec G304 -- operator supplied path
	if err != nil {
		return nil, err
	}
	if err := site.decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return site, nil
}

// decode overlays YAML onto the receiver and validates the result.
func (s *SiteConfig) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	for i, h := range s.RedirectHosts {
		s.RedirectHosts[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return validation.New().Validate(s)
}

// IsRedirectHost reports whether requests for host should go to BaseURL.
func (s *SiteConfig) IsRedirectHost(host string) bool {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for _, h := range s.RedirectHosts {
		if h == host {
			return true
		}
	}
	return false
}
