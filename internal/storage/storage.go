package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// Package storage persists scraped articles keyed by their canonical URL.

// ArticleStore is the persistence boundary of the archiver.
type ArticleStore interface {
	// FindByURL looks up a stored article by exact URL.
	FindByURL(ctx context.Context, url string) (Record, bool, error)
	// Create validates and inserts a new article. A URL that already exists yields a
	// *DuplicateKeyError.
	Create(ctx context.Context, art domain.ScrapedArticle) (Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Record is a stored article.
type Record struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Content       string     `json:"content" db:"content"`
	URL           string     `json:"url" db:"url"`
	PublishedDate *time.Time `json:"published_date,omitempty" db:"published_date"`
	ScrapedAt     time.Time  `json:"scraped_at" db:"scraped_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Options configures the concrete backends.
type Options struct {
	BBoltPath   string
	DatabaseURL string
	// Now stamps CreatedAt/UpdatedAt; defaults to time.Now.
	Now func() time.Time
}

// NewStore creates the configured storage backend.
func NewStore(ctx context.Context, typ string, opts Options) (ArticleStore, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	if opts.Now == nil {
		opts.Now = time.Now
	}

	switch typ {
	case "memory", "none", "disabled":
		return NewMemoryStore(opts.Now), nil
	case "", "bbolt":
		if strings.TrimSpace(opts.BBoltPath) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.BBoltPath, opts.Now)
	case "sqlite", "sqlite3":
		if strings.TrimSpace(opts.DatabaseURL) == "" {
			return nil, fmt.Errorf("sqlite storage requires database_url")
		}
		return openSQL(ctx, dialectSQLite, opts.DatabaseURL, opts.Now)
	case "postgres", "postgresql":
		if strings.TrimSpace(opts.DatabaseURL) == "" {
			return nil, fmt.Errorf("postgres storage requires database_url")
		}
		return openSQL(ctx, dialectPostgres, opts.DatabaseURL, opts.Now)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// newRecord validates art and stamps a fresh record.
func newRecord(art domain.ScrapedArticle, now time.Time) (Record, error) {
	art, err := validateArticle(art)
	if err != nil {
		return Record{}, err
	}
	now = now.UTC()
	rec := Record{
		ID:        uuid.NewString(),
		Title:     art.Title,
		Content:   art.Content,
		URL:       art.URL,
		ScrapedAt: art.ScrapedAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if art.PublishedDate != nil {
		published := art.PublishedDate.UTC()
		rec.PublishedDate = &published
	}
	if rec.ScrapedAt.IsZero() {
		rec.ScrapedAt = now
	}
	return rec, nil
}
