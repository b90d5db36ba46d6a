package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

const (
	paragraphSeparator = "\n\n"

	// minContainerContent is the joined length a content selector must exceed to be trusted.
	minContainerContent = domain.MinInformativeContent
	// minParagraph drops captions and nav fragments in the paragraph fallback.
	minParagraph = 20
)

// titleSeparators are cut in order; templates append the site name after them.
var titleSeparators = []string{"|", "-"}

var titleStrategies = []Strategy[string]{
	firstText("h1"),
	allText("title"),
	allText(".entry-title"),
	allText(".post-title"),
}

var contentSelectors = []string{
	"article .entry-content",
	".post-content",
	".article-content",
	".blog-content",
	"article p",
	".content p",
	"main p",
}

const paragraphContainers = "article, main, .post, .blog-post"

// Article extracts a ScrapedArticle from a parsed article page. Missing parts are left
// empty; extraction never fails on markup it does not recognise.
func Article(doc *goquery.Document, pageURL string, now time.Time) domain.ScrapedArticle {
	art := domain.ScrapedArticle{
		URL:       pageURL,
		ScrapedAt: now,
	}

	if title, ok := FirstOf(doc, titleStrategies...); ok {
		art.Title = CleanTitle(title)
	}

	art.Content = Content(doc, pageURL)

	dateStrategies := make([]Strategy[time.Time], 0, len(dateSelectors))
	for _, sel := range dateSelectors {
		dateStrategies = append(dateStrategies, dateFrom(sel))
	}
	if published, ok := FirstOf(doc, dateStrategies...); ok {
		art.PublishedDate = &published
	}

	return art
}

// CleanTitle strips site-name suffixes such as "Post | Site" or "Post - Site".
func CleanTitle(raw string) string {
	title := raw
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 {
			title = title[:i]
		}
	}
	return normalizeSpace(title)
}

// Content returns the article body as paragraphs separated by blank lines.
func Content(doc *goquery.Document, pageURL string) string {
	strategies := make([]Strategy[string], 0, len(contentSelectors)+2)
	for _, sel := range contentSelectors {
		strategies = append(strategies, containerText(sel))
	}
	strategies = append(strategies, longParagraphs, readabilityText(pageURL))

	content, _ := FirstOf(doc, strategies...)
	return content
}

// containerText joins the text of every element matching sel and accepts it only when the
// result is long enough to be the article body.
func containerText(sel string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		matches := doc.Find(sel)
		if matches.Length() == 0 {
			return "", false
		}
		joined := joinTexts(matches, 0)
		return joined, runeLen(joined) > minContainerContent
	}
}

// longParagraphs collects paragraphs under the broad article containers.
func longParagraphs(doc *goquery.Document) (string, bool) {
	joined := joinTexts(doc.Find(paragraphContainers).Find("p"), minParagraph)
	return joined, joined != ""
}

// readabilityText is the last resort for pages whose markup matches none of the selectors.
func readabilityText(pageURL string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		html, err := doc.Html()
		if err != nil {
			return "", false
		}
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return "", false
		}
		article, err := readability.FromReader(strings.NewReader(html), parsed)
		if err != nil {
			return "", false
		}
		text := strings.TrimSpace(article.TextContent)
		return text, text != ""
	}
}

// joinTexts trims each element's text, drops texts of minLen runes or fewer, and joins the
// rest with blank lines.
func joinTexts(sel *goquery.Selection, minLen int) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || (minLen > 0 && runeLen(text) <= minLen) {
			return
		}
		parts = append(parts, text)
	})
	return strings.Join(parts, paragraphSeparator)
}

func firstText(sel string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		return text, text != ""
	}
}

func allText(sel string) Strategy[string] {
	return func(doc *goquery.Document) (string, bool) {
		text := strings.TrimSpace(doc.Find(sel).Text())
		return text, text != ""
	}
}
