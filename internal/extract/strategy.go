// Package extract turns fetched blog HTML into pagination bounds, article candidates, and
// article records. Every extractor is an ordered chain of independent strategies evaluated
// against a parsed document; the first strategy that yields a value wins.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of pulling a value out of a document.
type Strategy[T any] func(doc *goquery.Document) (T, bool)

// FirstOf evaluates strategies in order and returns the first successful value.
func FirstOf[T any](doc *goquery.Document, strategies ...Strategy[T]) (T, bool) {
	for _, s := range strategies {
		if s == nil {
			continue
		}
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// ParseDocument parses raw HTML.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
