package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// linkSelectors are tried in order; earlier selectors tend to carry better titles.
var linkSelectors = []string{
	"article a",
	".post a",
	".blog-post a",
	"h2 a",
	"h3 a",
	".entry-title a",
	".post-title a",
	"a.read-more",
	`.card a[href*="/"]`,
}

// excludedSegments mark pagination and taxonomy pages rather than posts.
var excludedSegments = []string{"/page/", "/category/", "/tag/"}

// minHeadlineText is the anchor text length above which a bare link looks like a headline.
const minHeadlineText = 10

// Links returns the article candidates on a listing page, deduplicated by canonical URL in
// first-seen order. If none of the structural selectors produce a candidate, every anchor
// with headline-length text is considered instead. Relative hrefs resolve against doc.Url
// when set, otherwise against listingURL.
func Links(doc *goquery.Document, listingURL string) ([]domain.ArticleCandidate, error) {
	filter, err := newLinkFilter(listingURL)
	if err != nil {
		return nil, err
	}
	if doc.Url != nil && doc.Url.Host != "" {
		filter.base = doc.Url
	}

	c := newCollector()
	for _, sel := range linkSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			u, ok := filter.accept(href)
			if !ok {
				return
			}
			c.add(u, anchorTitle(s))
		})
	}
	if c.len() > 0 {
		return c.out, nil
	}

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(s.Text())
		if runeLen(text) <= minHeadlineText {
			return
		}
		href, _ := s.Attr("href")
		u, ok := filter.accept(href)
		if !ok {
			return
		}
		c.add(u, text)
	})
	return c.out, nil
}

func anchorTitle(s *goquery.Selection) string {
	if text := normalizeSpace(s.Text()); text != "" {
		return text
	}
	title, _ := s.Attr("title")
	return normalizeSpace(title)
}

type candidateCollector struct {
	seen map[string]struct{}
	out  []domain.ArticleCandidate
}

func newCollector() *candidateCollector {
	return &candidateCollector{seen: make(map[string]struct{})}
}

func (c *candidateCollector) add(u, title string) {
	if _, dup := c.seen[u]; dup {
		return
	}
	c.seen[u] = struct{}{}
	c.out = append(c.out, domain.ArticleCandidate{URL: u, Title: title})
}

func (c *candidateCollector) len() int { return len(c.out) }

// linkFilter keeps same-site post links and canonicalizes them.
type linkFilter struct {
	base    *url.URL
	host    string
	listing string
}

func newLinkFilter(listingURL string) (linkFilter, error) {
	base, err := url.Parse(strings.TrimSpace(listingURL))
	if err != nil {
		return linkFilter{}, fmt.Errorf("parse listing url: %w", err)
	}
	if base.Host == "" {
		return linkFilter{}, fmt.Errorf("listing url %q is not absolute", listingURL)
	}
	f := linkFilter{base: base, host: siteHost(base.Host)}
	f.listing = trimSlash(canonicalize(base))
	return f, nil
}

// accept resolves href against the listing URL and reports whether it points at a post
// on the same site.
func (f linkFilter) accept(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.Contains(href, "#") {
		return "", false
	}
	u, err := f.base.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if siteHost(u.Host) != f.host {
		return "", false
	}
	path := strings.ToLower(u.Path) + "/"
	for _, seg := range excludedSegments {
		if strings.Contains(path, seg) {
			return "", false
		}
	}
	canon := canonicalize(u)
	if trimSlash(canon) == f.listing {
		return "", false
	}
	return canon, true
}

func canonicalize(u *url.URL) string {
	cp := *u
	cp.Fragment = ""
	cp.RawFragment = ""
	cp.Host = strings.ToLower(cp.Host)
	cp.Scheme = strings.ToLower(cp.Scheme)
	return cp.String()
}

func trimSlash(u string) string {
	return strings.TrimSuffix(u, "/")
}

func siteHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
