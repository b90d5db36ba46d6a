package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// MaxTitleLength bounds a stored title, in characters.
const MaxTitleLength = 500

// ErrDuplicateKey matches any *DuplicateKeyError through errors.Is.
var ErrDuplicateKey = errors.New("duplicate key")

// ValidationError reports an article field the store refuses to persist.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateKeyError reports an insert whose URL is already stored.
type DuplicateKeyError struct {
	URL string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("article already stored: %s", e.URL)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// validateArticle trims the stored fields and checks the record constraints.
func validateArticle(art domain.ScrapedArticle) (domain.ScrapedArticle, error) {
	art.Title = strings.TrimSpace(art.Title)
	art.URL = strings.TrimSpace(art.URL)

	if art.Title == "" {
		return art, &ValidationError{Field: "title", Reason: "required"}
	}
	if n := utf8.RuneCountInString(art.Title); n > MaxTitleLength {
		return art, &ValidationError{Field: "title", Reason: fmt.Sprintf("%d characters exceeds %d", n, MaxTitleLength)}
	}
	if strings.TrimSpace(art.Content) == "" {
		return art, &ValidationError{Field: "content", Reason: "required"}
	}
	if art.URL == "" {
		return art, &ValidationError{Field: "url", Reason: "required"}
	}
	u, err := url.Parse(art.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return art, &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	return art, nil
}
