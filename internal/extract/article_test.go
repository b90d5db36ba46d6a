package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

const longSentence = "Customer support teams spend most of their day answering the same handful of questions over and over again."

func article(t *testing.T, html string) (title, content string, published *time.Time) {
	t.Helper()
	doc, err := ParseDocument(html)
	require.NoError(t, err)
	art := Article(doc, "https://example.com/blogs/post/", fixedNow)
	assert.Equal(t, "https://example.com/blogs/post/", art.URL)
	assert.Equal(t, fixedNow, art.ScrapedAt)
	return art.Title, art.Content, art.PublishedDate
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"My Post | MySite Blog":  "My Post",
		"My Post - MySite":       "My Post",
		"  Spaced   Title  ":     "Spaced Title",
		"Plain":                  "Plain",
		"Mixed | Site - Tagline": "Mixed",
		"Before - After | Site":  "Before",
		"":                       "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CleanTitle(raw), "CleanTitle(%q)", raw)
	}
}

func TestArticleTitleFromTitleElement(t *testing.T) {
	title, _, _ := article(t, `<html><head><title>My Post | MySite Blog</title></head><body></body></html>`)
	assert.Equal(t, "My Post", title)
}

func TestArticleTitlePrefersHeading(t *testing.T) {
	title, _, _ := article(t, `<html><head><title>Page | Site</title></head>
<body><h1>
  Heading Title
</h1><h1>Second</h1><div class="entry-title">Entry</div></body></html>`)
	assert.Equal(t, "Heading Title", title)
}

func TestArticleTitleFromEntryTitleContainer(t *testing.T) {
	title, _, _ := article(t, `<html><body><div class="post-title">Only Post Title - Site</div></body></html>`)
	assert.Equal(t, "Only Post Title", title)
}

func TestArticleMissingTitleIsEmpty(t *testing.T) {
	title, _, _ := article(t, `<html><body><p>nothing</p></body></html>`)
	assert.Empty(t, title)
}

func TestArticleContentFromEntryContent(t *testing.T) {
	html := `<html><body><article>
  <div class="entry-content"><p>` + longSentence + `</p><p>Second paragraph.</p></div>
  <p>Outside paragraph that should not be joined separately.</p>
</article></body></html>`

	_, content, _ := article(t, html)
	assert.True(t, strings.HasPrefix(content, longSentence))
	assert.Contains(t, content, "Second paragraph.")
	assert.NotContains(t, content, "Outside paragraph")
}

func TestArticleContentJoinsMultipleMatchesWithBlankLines(t *testing.T) {
	html := `<html><body>
  <div class="post-content">` + longSentence + `</div>
  <div class="post-content">Follow-up block.</div>
</body></html>`

	_, content, _ := article(t, html)
	assert.Equal(t, longSentence+"\n\nFollow-up block.", content)
}

func TestArticleContentSkipsShortContainer(t *testing.T) {
	html := `<html><body>
  <div class="post-content">Too short.</div>
  <main><p>` + longSentence + `</p></main>
</body></html>`

	_, content, _ := article(t, html)
	assert.Equal(t, longSentence, content)
}

func TestArticleContentParagraphFallback(t *testing.T) {
	html := `<html><body>
  <div class="blog-post">
    <p>Short caption</p>
    <p>This paragraph is comfortably longer than twenty characters.</p>
    <p>Tiny</p>
    <p>Another paragraph that also clears the minimum length.</p>
  </div>
</body></html>`

	_, content, _ := article(t, html)
	assert.Equal(t,
		"This paragraph is comfortably longer than twenty characters.\n\nAnother paragraph that also clears the minimum length.",
		content)
}

func TestArticlePublishedDate(t *testing.T) {
	cases := []struct {
		name string
		html string
		want time.Time
	}{
		{
			name: "time datetime attribute",
			html: `<time datetime="2023-04-05T06:07:08Z">April 5</time>`,
			want: time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC),
		},
		{
			name: "post-date text",
			html: `<span class="post-date">March 14, 2022</span>`,
			want: time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unparseable container falls through to meta",
			html: `<span class="entry-date">yesterday</span>
			       <meta property="article:published_time" content="2021-01-02T03:04:05+00:00">`,
			want: time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, published := article(t, `<html><head></head><body>`+tc.html+`</body></html>`)
			require.NotNil(t, published)
			assert.True(t, tc.want.Equal(*published), "got %v want %v", *published, tc.want)
		})
	}
}

func TestArticleWithoutDateLeavesItUnset(t *testing.T) {
	_, _, published := article(t, `<html><body><span class="date">sometime</span></body></html>`)
	assert.Nil(t, published)
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2024-01-15", "2024-01-15 10:30:00", "15 January 2024", "Jan 15, 2024", "2024-01-15T10:30:00+0530"} {
		_, ok := ParseDate(raw)
		assert.True(t, ok, "expected %q to parse", raw)
	}
	_, ok := ParseDate("not a date")
	assert.False(t, ok)
}

func TestParseDateDetectsUnlistedFormats(t *testing.T) {
	got, ok := ParseDate("3/14/2022")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC)), "got %v", got)
}

func TestFirstOfStopsAtFirstSuccess(t *testing.T) {
	doc, err := ParseDocument(`<p>x</p>`)
	require.NoError(t, err)

	calls := 0
	var miss Strategy[string] = func(*goquery.Document) (string, bool) { calls++; return "", false }
	var hit Strategy[string] = func(*goquery.Document) (string, bool) { calls++; return "hit", true }
	var never Strategy[string] = func(*goquery.Document) (string, bool) {
		t.Fatal("strategy after a hit must not run")
		return "", false
	}

	got, ok := FirstOf(doc, miss, hit, never)
	assert.True(t, ok)
	assert.Equal(t, "hit", got)
	assert.Equal(t, 2, calls)
}
