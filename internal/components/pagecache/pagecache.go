// Package pagecache is a write-once store of fetched pages, so re-running a
// scrape does not hit the site again for pages it has already seen.
package pagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"chicago-openelex/internal/components/assert"
	"chicago-openelex/internal/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("chicago-openelex/internal/components/pagecache")

var ErrPageNotFound = errors.New("page not found in cache")

const schema = `
CREATE TABLE IF NOT EXISTS page (
    key TEXT PRIMARY KEY,
    final_url TEXT NOT NULL,
    body BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
`

type Page struct {
	// the url the response was served from after redirects
	FinalUrl  string
	Body      []byte
	CreatedAt time.Time
}

type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at `path`.
func Open(ctx context.Context, path string) (Cache, error) {
	sqldb, err := db.OpenSqlite(ctx, path)
	if err != nil {
		return Cache{}, err
	}
	return New(ctx, sqldb)
}

func New(ctx context.Context, sqldb *sql.DB) (Cache, error) {
	assert.NotNil(sqldb)
	_, err := sqldb.ExecContext(ctx, schema)
	if err != nil {
		return Cache{}, fmt.Errorf("create page cache: %w", err)
	}
	return Cache{db: sqldb}, nil
}

func (c Cache) Close() error {
	return c.db.Close()
}

// Key identifies a request, form values are encoded in sorted order so the same
// submission always maps to the same key.
func Key(method, endpoint string, form url.Values) string {
	key := strings.ToUpper(method) + " " + endpoint
	if len(form) > 0 {
		key += " " + form.Encode()
	}
	return key
}

func (c Cache) Get(ctx context.Context, key string) (Page, error) {
	ctx, span := tracer.Start(ctx, "cache:get")
	defer span.End()
	span.SetAttributes(attribute.String("custom.cache_key", key))

	row := c.db.QueryRowContext(
		ctx,
		"SELECT final_url, body, created_at FROM page WHERE key = ?",
		key,
	)
	var page Page
	var createdAt int64
	err := row.Scan(&page.FinalUrl, &page.Body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrPageNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read cached page")
		return Page{}, err
	}
	page.CreatedAt = time.Unix(createdAt, 0)

	span.SetAttributes(attribute.Int("custom.contentlength", len(page.Body)))
	return page, nil
}

// Put stores a page under `key`, an existing entry is never replaced.
func (c Cache) Put(ctx context.Context, key string, page Page) error {
	ctx, span := tracer.Start(ctx, "cache:put")
	defer span.End()
	span.SetAttributes(attribute.String("custom.cache_key", key))

	createdAt := page.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := c.db.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO page (key, final_url, body, created_at) VALUES (?, ?, ?, ?)",
		key,
		page.FinalUrl,
		page.Body,
		createdAt.Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write cached page")
		return err
	}
	return nil
}

// Delete forgets every page whose key starts with `prefix`.
func (c Cache) Delete(ctx context.Context, prefix string) (int64, error) {
	result, err := c.db.ExecContext(
		ctx,
		"DELETE FROM page WHERE substr(key, 1, ?) = ?",
		len(prefix),
		prefix,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
