package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

// MemoryStore keeps records in process. It backs dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	byURL map[string]Record
	now   func() time.Time
}

// NewMemoryStore returns an empty in-process store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{byURL: make(map[string]Record), now: now}
}

func (m *MemoryStore) FindByURL(ctx context.Context, url string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byURL[strings.TrimSpace(url)]
	return rec, ok, nil
}

func (m *MemoryStore) Create(ctx context.Context, art domain.ScrapedArticle) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	rec, err := newRecord(art, m.now())
	if err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byURL[rec.URL]; exists {
		return Record{}, &DuplicateKeyError{URL: rec.URL}
	}
	m.byURL[rec.URL] = rec
	return rec, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byURL), nil
}

func (m *MemoryStore) Close() error { return nil }
