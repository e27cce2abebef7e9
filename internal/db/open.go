package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config picks between a local sqlite file and a remote libsql database,
// Url takes precedence when set.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func (config Config) OpenDB(ctx context.Context) (*sql.DB, error) {
	if config.Url == "" {
		return OpenDB(ctx, config.File)
	}

	dburl, err := url.Parse(config.Url)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	if config.AuthToken != "" {
		query := dburl.Query()
		query.Set("authToken", config.AuthToken)
		dburl.RawQuery = query.Encode()
	}

	db, err := sql.Open("libsql", dburl.String())
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	err = migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens (creating if needed) the sqlite database at `path` and applies
// the schema. ":memory:" gives an empty in-memory database.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenSqlite(ctx, path)
	if err != nil {
		return nil, err
	}
	err = migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSqlite opens the sqlite database at `path` without touching its tables.
func OpenSqlite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// a single connection also keeps ":memory:" databases alive between queries.
	db.SetMaxOpenConns(1)
	_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
