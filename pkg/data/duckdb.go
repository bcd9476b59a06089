package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE SEQUENCE IF NOT EXISTS series_id_seq START 1;
CREATE TABLE IF NOT EXISTS series (
	id        BIGINT PRIMARY KEY DEFAULT nextval('series_id_seq'),
	url       VARCHAR NOT NULL UNIQUE,
	name      VARCHAR NOT NULL,
	alias     VARCHAR NOT NULL,
	following BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE SEQUENCE IF NOT EXISTS chapter_id_seq START 1;
CREATE TABLE IF NOT EXISTS chapters (
	id         BIGINT PRIMARY KEY DEFAULT nextval('chapter_id_seq'),
	series_id  BIGINT NOT NULL,
	url        VARCHAR NOT NULL,
	chapter    VARCHAR NOT NULL,
	groups     VARCHAR NOT NULL DEFAULT '',
	downloaded INTEGER NOT NULL DEFAULT 0,
	UNIQUE (series_id, url)
);
`

// InitDuckDB opens the database at path, creating its directory and the
// schema when missing.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Repository is the download state store. All statements run in autocommit
// mode, so every mutation is committed when the call returns.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// OpenRepository is InitDuckDB followed by NewRepository.
func OpenRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
