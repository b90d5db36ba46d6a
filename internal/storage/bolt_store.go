package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const articleBucket = "articles"

// boltStore implements ArticleStore on BoltDB: one bucket, URL keys, JSON record values.
type boltStore struct {
	db  *bolt.DB
	now func() time.Time
}

// openBolt initializes a BoltDB-backed store.
func openBolt(path string, now func() time.Time) (*boltStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(articleBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	return &boltStore{db: db, now: now}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) FindByURL(ctx context.Context, url string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	var (
		rec   Record
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}
		value := bucket.Get([]byte(strings.TrimSpace(url)))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode record %s: %w", url, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, found, nil
}

func (b *boltStore) Create(ctx context.Context, art domain.ScrapedArticle) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	rec, err := newRecord(art, b.now())
	if err != nil {
		return Record{}, err
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}
		key := []byte(rec.URL)
		if bucket.Get(key) != nil {
			return &DuplicateKeyError{URL: rec.URL}
		}
		return bucket.Put(key, value)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (b *boltStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(articleBucket))
		if bucket == nil {
			return fmt.Errorf("article bucket missing")
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
