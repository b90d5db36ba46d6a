package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/pkg/httpclient"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	maxHTMLBodyBytes = 8 << 20 // 8 MiB
)

// ErrBodyTooLarge is the cause of a FetchError for pages above the 8 MiB limit.
var ErrBodyTooLarge = errors.New("response body exceeds 8 MiB")

// FetchError reports a network failure, timeout, or non-2xx response for one URL.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Fetcher retrieves raw HTML with a fixed header set. It performs exactly one request per call.
type Fetcher struct {
	client  httpclient.Client
	headers map[string]string
}

// New builds a Fetcher. A nil client gets a resty client with DefaultTimeout.
func New(client httpclient.Client, headers map[string]string) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(DefaultTimeout, nil)
	}
	cp := make(map[string]string, len(headers))
	for k, v := range headers {
		cp[k] = v
	}
	return &Fetcher{client: client, headers: cp}
}

// Fetch returns the body of url as text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.Get(ctx, url, f.headers)
	if err != nil {
		return "", &FetchError{URL: url, Cause: err}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return "", &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Cause:      fmt.Errorf("unexpected response: %s", responseSnippet(body)),
		}
	}

	if len(body) > maxHTMLBodyBytes {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode(), Cause: ErrBodyTooLarge}
	}
	return string(body), nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
