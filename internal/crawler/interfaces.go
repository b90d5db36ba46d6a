package crawler

import "context"

// PageFetcher retrieves the raw HTML of one page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Throttle paces the article fetches of a single run. Wait is called before every article.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Pacer builds a fresh Throttle for each run so pacing state never leaks between runs.
type Pacer func() Throttle
