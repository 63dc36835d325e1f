package domain

import "time"

// Post is a blog entry served by the CMS.
type Post struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Slug        string    `json:"slug"`
	TitleHTML   string    `json:"title_html"`
	ExcerptHTML string    `json:"excerpt_html,omitempty"`
	ContentHTML string    `json:"content_html,omitempty"`
}

// DisplayDate formats the post date the way the site prints it (2026.01.18).
func (p *Post) DisplayDate() string {
	if p.Date.IsZero() {
		return ""
	}
	return p.Date.Format("2006.01.02")
}
