package domain

import (
	"time"
	"unicode/utf8"
)

// Domain contains core models shared by the scrape pipeline and its collaborators.

// MinInformativeContent is the content length below which extraction is considered degraded.
const MinInformativeContent = 100

// ArticleCandidate is a link found on a listing page, not yet fetched.
type ArticleCandidate struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ScrapedArticle is the normalized result of extracting one article page.
type ScrapedArticle struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	ScrapedAt     time.Time  `json:"scraped_at"`
}

// Informative reports whether the content is long enough to trust the extraction.
func (a ScrapedArticle) Informative() bool {
	return utf8.RuneCountInString(a.Content) >= MinInformativeContent
}
