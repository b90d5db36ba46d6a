package crawler

import (
	"fmt"

	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// Status describes what happened to one candidate during a run.
type Status string

const (
	StatusScraped Status = "scraped"
	StatusSkipped Status = "skipped"
)

// ArticleResult is the per-candidate outcome of a run. Article is set only when Status is
// StatusScraped; Err explains a skip.
type ArticleResult struct {
	Candidate domain.ArticleCandidate
	Status    Status
	Article   domain.ScrapedArticle
	Err       error
}

// ScrapedArticles returns the successfully extracted articles in run order.
func ScrapedArticles(results []ArticleResult) []domain.ScrapedArticle {
	out := make([]domain.ScrapedArticle, 0, len(results))
	for _, r := range results {
		if r.Status == StatusScraped {
			out = append(out, r.Article)
		}
	}
	return out
}

// ExtractionError reports a page that was fetched but could not be turned into an article.
type ExtractionError struct {
	URL   string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }
