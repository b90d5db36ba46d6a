package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/samvad-hq/samvad-blog-archiver/internal/domain"
)

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "postgres"

	pqUniqueViolation = "23505"
)

var schemas = map[string]string{
	dialectSQLite: `CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	published_date TIMESTAMP NULL,
	scraped_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`,
	dialectPostgres: `CREATE TABLE IF NOT EXISTS articles (
	id UUID PRIMARY KEY,
	title VARCHAR(500) NOT NULL,
	content TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	published_date TIMESTAMPTZ NULL,
	scraped_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
}

const (
	selectByURL = `SELECT id, title, content, url, published_date, scraped_at, created_at, updated_at
FROM articles WHERE url = ?`
	insertArticle = `INSERT INTO articles (id, title, content, url, published_date, scraped_at, created_at, updated_at)
VALUES (:id, :title, :content, :url, :published_date, :scraped_at, :created_at, :updated_at)`
	countArticles = `SELECT COUNT(*) FROM articles`
)

// sqlStore implements ArticleStore on a SQL database through sqlx.
type sqlStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func openSQL(ctx context.Context, driver, dsn string, now func() time.Time) (*sqlStore, error) {
	if driver == dialectSQLite {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == dialectSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	store := newSQLStore(db, now)
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func newSQLStore(db *sqlx.DB, now func() time.Time) *sqlStore {
	if now == nil {
		now = time.Now
	}
	return &sqlStore{db: db, now: now}
}

func (s *sqlStore) migrate(ctx context.Context) error {
	schema, ok := schemas[s.db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.db.DriverName())
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}

func (s *sqlStore) FindByURL(ctx context.Context, url string) (Record, bool, error) {
	var rec Record
	err := s.db.GetContext(ctx, &rec, s.db.Rebind(selectByURL), strings.TrimSpace(url))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("find article %s: %w", url, err)
	}
	return rec, true, nil
}

func (s *sqlStore) Create(ctx context.Context, art domain.ScrapedArticle) (Record, error) {
	rec, err := newRecord(art, s.now())
	if err != nil {
		return Record{}, err
	}
	if _, err := s.db.NamedExecContext(ctx, insertArticle, rec); err != nil {
		if isUniqueViolation(err) {
			return Record{}, &DuplicateKeyError{URL: rec.URL}
		}
		return Record{}, fmt.Errorf("insert article %s: %w", rec.URL, err)
	}
	return rec, nil
}

func (s *sqlStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, countArticles); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == pqUniqueViolation
	}
	return false
}
