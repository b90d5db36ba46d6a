package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
	"github.com/samvad-hq/samvad-blog-archiver/internal/extract"
	"github.com/samvad-hq/samvad-blog-archiver/internal/logger"
)

// Service runs the scrape pipeline for one blog listing.
type Service struct {
	listingURL string
	fetcher    PageFetcher
	pacer      Pacer
	log        logger.Logger
	now        func() time.Time
	extract    func(doc *goquery.Document, pageURL string, now time.Time) domain.ScrapedArticle
}

// NewService wires a pipeline for listingURL. A nil pacer disables throttling.
func NewService(listingURL string, fetcher PageFetcher, pacer Pacer, log logger.Logger) *Service {
	if pacer == nil {
		pacer = NoDelay()
	}
	return &Service{
		listingURL: listingURL,
		fetcher:    fetcher,
		pacer:      pacer,
		log:        logger.Ensure(log),
		now:        time.Now,
		extract:    extract.Article,
	}
}

// ListingURL returns the blog root this service crawls.
func (s *Service) ListingURL() string { return s.listingURL }

// CollectOldestArticles finds the last listing page, picks the final batchSize candidates on
// it and scrapes them one at a time. Failures on individual articles become skipped results;
// an error is returned only when the listing itself cannot be processed or ctx ends the run.
func (s *Service) CollectOldestArticles(ctx context.Context, batchSize int) ([]ArticleResult, error) {
	if s == nil || s.fetcher == nil {
		return nil, fmt.Errorf("crawler service is not initialized")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	rootDoc, err := s.fetchDocument(ctx, s.listingURL)
	if err != nil {
		return nil, fmt.Errorf("load listing page: %w", err)
	}

	lastPage := extract.LastPage(rootDoc)
	lastURL := extract.LastPageURL(s.listingURL, lastPage)
	s.log.InfoObj("resolved last listing page", "pagination", map[string]any{
		"listing_url": s.listingURL,
		"last_page":   lastPage,
		"page_url":    lastURL,
	})

	lastDoc, err := s.fetchDocument(ctx, lastURL)
	if err != nil {
		return nil, fmt.Errorf("load last listing page: %w", err)
	}

	candidates, err := extract.Links(lastDoc, s.listingURL)
	if err != nil {
		return nil, fmt.Errorf("extract article links: %w", err)
	}
	if len(candidates) == 0 {
		s.log.WarnObj("no article links found", "pagination", map[string]any{
			"page_url": lastURL,
		})
		return []ArticleResult{}, nil
	}

	selected := oldest(candidates, batchSize)
	s.log.InfoObj("selected oldest articles", "selection", map[string]any{
		"page_url":   lastURL,
		"candidates": len(candidates),
		"selected":   len(selected),
	})

	throttle := s.pacer()
	results := make([]ArticleResult, 0, len(selected))
	for _, cand := range selected {
		if err := throttle.Wait(ctx); err != nil {
			return results, fmt.Errorf("run interrupted: %w", err)
		}
		results = append(results, s.ScrapeArticle(ctx, cand))
	}

	return results, nil
}

// ScrapeArticle fetches and extracts one candidate. It never fails outright: any fetch or
// extraction problem is reported as a skipped result.
func (s *Service) ScrapeArticle(ctx context.Context, cand domain.ArticleCandidate) ArticleResult {
	res := ArticleResult{Candidate: cand, Status: StatusSkipped}

	html, err := s.fetcher.Fetch(ctx, cand.URL)
	if err != nil {
		res.Err = err
		s.log.WarnObj("article fetch failed", "article_error", map[string]any{
			"url":   cand.URL,
			"error": err.Error(),
		})
		return res
	}

	art, err := s.extractArticle(html, cand.URL)
	if err != nil {
		res.Err = err
		s.log.WarnObj("article extraction failed", "article_error", map[string]any{
			"url":   cand.URL,
			"error": err.Error(),
		})
		return res
	}

	if !art.Informative() {
		s.log.WarnObj("article content looks degraded", "article", map[string]any{
			"url":           art.URL,
			"content_runes": len([]rune(art.Content)),
		})
	}
	s.log.InfoObj("article scraped", "article", map[string]any{
		"url":   art.URL,
		"title": art.Title,
	})

	res.Status = StatusScraped
	res.Article = art
	return res
}

func (s *Service) extractArticle(html, pageURL string) (art domain.ScrapedArticle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{URL: pageURL, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	doc, err := extract.ParseDocument(html)
	if err != nil {
		return art, &ExtractionError{URL: pageURL, Cause: err}
	}
	return s.extract(doc, pageURL, s.now()), nil
}

func (s *Service) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	html, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	if u, perr := url.Parse(pageURL); perr == nil {
		doc.Url = u
	}
	return doc, nil
}

// oldest returns the last n candidates, which on a newest-first listing are the oldest posts.
func oldest(candidates []domain.ArticleCandidate, n int) []domain.ArticleCandidate {
	if len(candidates) <= n {
		return candidates
	}
	return candidates[len(candidates)-n:]
}
