package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	pageHrefPattern   = regexp.MustCompile(`/page/(\d+)`)
	leadingIntPattern = regexp.MustCompile(`^\d+`)
)

const paginationControls = ".pagination a, .nav-links a, .page-numbers"

// LastPage returns the highest page number reachable from the listing's own links, or 1.
// Themes mark the last page inconsistently, so both /page/N/ hrefs and numbered
// pagination controls are scanned and the larger wins.
func LastPage(doc *goquery.Document) int {
	last := 1
	if n := maxPageFromHrefs(doc); n > last {
		last = n
	}
	if n := maxPageFromControls(doc); n > last {
		last = n
	}
	return last
}

func maxPageFromHrefs(doc *goquery.Document) int {
	maxN := 0
	doc.Find(`a[href*="/page/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := pageHrefPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxN {
			maxN = n
		}
	})
	return maxN
}

func maxPageFromControls(doc *goquery.Document) int {
	maxN := 0
	doc.Find(paginationControls).Each(func(_ int, s *goquery.Selection) {
		digits := leadingIntPattern.FindString(strings.TrimSpace(s.Text()))
		if digits == "" {
			return
		}
		if n, err := strconv.Atoi(digits); err == nil && n > maxN {
			maxN = n
		}
	})
	return maxN
}

// LastPageURL returns the listing URL of page n under root.
func LastPageURL(root string, n int) string {
	if n <= 1 {
		return root
	}
	u, err := url.Parse(root)
	if err != nil {
		return strings.TrimSuffix(root, "/") + fmt.Sprintf("/page/%d/", n)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf("/page/%d/", n)
	u.RawPath = ""
	return u.String()
}
