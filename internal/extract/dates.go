package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// dateLayouts covers the machine and human date formats blog templates commonly render.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Monday, January 2, 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2006/01/02",
}

// ParseDate parses a date string in any known layout, then falls back to format
// detection. Zone-less values are read as UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = normalizeSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}

var dateSelectors = []string{
	"time[datetime]",
	".post-date",
	".entry-date",
	".published",
	".date",
	`meta[property="article:published_time"]`,
}

// dateFrom reads the first element matching sel: its datetime attribute, then its content
// attribute, then its text.
func dateFrom(sel string) Strategy[time.Time] {
	return func(doc *goquery.Document) (time.Time, bool) {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			return time.Time{}, false
		}
		raw := firstNonEmpty(attr(node, "datetime"), attr(node, "content"), node.Text())
		return ParseDate(raw)
	}
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
