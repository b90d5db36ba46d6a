package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var recordColumns = []string{"id", "title", "content", "url", "published_date", "scraped_at", "created_at", "updated_at"}

func newPostgresMock(t *testing.T) (*sqlStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	store := newSQLStore(sqlx.NewDb(mockDB, dialectPostgres), fixedClock)
	t.Cleanup(func() { _ = store.Close() })
	return store, mock
}

func TestPostgresStoreMigrates(t *testing.T) {
	store, mock := newPostgresMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS articles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresStoreFindByURL(t *testing.T) {
	store, mock := newPostgresMock(t)
	const url = "https://example.com/blogs/a/"
	query := regexp.QuoteMeta("FROM articles WHERE url = $1")

	mock.ExpectQuery(query).WithArgs(url).WillReturnRows(sqlmock.NewRows(recordColumns))
	mock.ExpectQuery(query).WithArgs(url).WillReturnRows(sqlmock.NewRows(recordColumns).
		AddRow("0b7c7f5e-4c55-4d0e-9f7a-1f1f1f1f1f1f", "A", "Body", url, nil, fixedNow, fixedNow, fixedNow))

	if _, found, err := store.FindByURL(context.Background(), url); err != nil || found {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
	rec, found, err := store.FindByURL(context.Background(), url)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if rec.Title != "A" || rec.PublishedDate != nil {
		t.Fatalf("unexpected record %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresStoreCreate(t *testing.T) {
	store, mock := newPostgresMock(t)
	const url = "https://example.com/blogs/chatbots/"
	insert := regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")

	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "Chatbots for support", sqlmock.AnyArg(), url,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := store.Create(context.Background(), sampleArticle(url))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.URL != url || rec.ID == "" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresStoreMapsUniqueViolation(t *testing.T) {
	store, mock := newPostgresMock(t)
	const url = "https://example.com/blogs/chatbots/"

	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Message: "duplicate key value violates unique constraint"})
	mock.ExpectExec("INSERT INTO articles").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := store.Create(context.Background(), sampleArticle(url))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	_, err = store.Create(context.Background(), sampleArticle(url))
	if err == nil || errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected plain insert error, got %v", err)
	}
}

func TestPostgresStoreCount(t *testing.T) {
	store, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := store.Count(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("expected 3, got %d err=%v", n, err)
	}
}

func TestSQLStoreRejectsInvalidBeforeQuery(t *testing.T) {
	store, mock := newPostgresMock(t)
	art := sampleArticle("https://example.com/blogs/x/")
	art.Title = ""

	if _, err := store.Create(context.Background(), art); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}
