package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/pkg/httpclient"
)

type stubResponse struct {
	body       []byte
	statusCode int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.statusCode }
func (s stubResponse) IsSuccess() bool { return s.statusCode >= 200 && s.statusCode < 300 }

type stubClient struct {
	resp    httpclient.Response
	err     error
	headers map[string]string
	calls   int
}

func (s *stubClient) Get(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
	s.calls++
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func TestFetchReturnsBodyAndSendsHeaders(t *testing.T) {
	client := &stubClient{resp: stubResponse{body: []byte("<p>hi</p>"), statusCode: 200}}
	f := New(client, map[string]string{"User-Agent": "UA", "Accept-Language": "en-US,en;q=0.5"})

	html, err := f.Fetch(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if html != "<p>hi</p>" {
		t.Fatalf("unexpected body %q", html)
	}
	if client.headers["User-Agent"] != "UA" || client.headers["Accept-Language"] == "" {
		t.Fatalf("headers not forwarded: %#v", client.headers)
	}
}

func TestFetchWrapsTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	client := &stubClient{err: cause}

	_, err := New(client, nil).Fetch(context.Background(), "https://example.com/")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrapped, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", client.calls)
	}
}

func TestFetchRejectsNon2xx(t *testing.T) {
	client := &stubClient{resp: stubResponse{body: []byte("forbidden"), statusCode: 403}}

	_, err := New(client, nil).Fetch(context.Background(), "https://example.com/")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != 403 {
		t.Fatalf("expected FetchError with status 403, got %v", err)
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	client := &stubClient{resp: stubResponse{body: make([]byte, maxHTMLBodyBytes+1), statusCode: 200}}

	html, err := New(client, nil).Fetch(context.Background(), "https://example.com/huge/")
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.URL != "https://example.com/huge/" {
		t.Fatalf("expected FetchError for the page, got %v", err)
	}
	if html != "" {
		t.Fatalf("expected no partial body, got %d bytes", len(html))
	}
}

func TestFetchTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := New(httpclient.NewRestyClient(50*time.Millisecond, nil), nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError on timeout, got %v", err)
	}
}
