// Package catalog tracks which filenames exist in the source folder, the
// staging tree, and the remote bucket for one invocation.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/billagee/dropbox-to-s3/internal/backup"
	"github.com/billagee/dropbox-to-s3/internal/catalog/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCatalog implements backup.Catalog on a SQLite database. The tool
// is stateless between invocations, so the catalog normally lives in
// memory and is rebuilt on every run.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewMemoryCatalog opens an in-memory catalog with the schema applied.
func NewMemoryCatalog() (*SQLiteCatalog, error) {
	return Open(":memory:")
}

// Open opens a catalog at the given path (or ":memory:") and migrates the
// schema to the latest version.
func Open(path string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog schema: %w", err)
	}
	return &SQLiteCatalog{db: db}, nil
}

func (c *SQLiteCatalog) MarkSource(name string) error {
	return c.mark(name, "in_source")
}

func (c *SQLiteCatalog) MarkStaging(name string) error {
	return c.mark(name, "in_staging")
}

func (c *SQLiteCatalog) MarkRemote(name string) error {
	return c.mark(name, "in_remote")
}

// mark upserts a row with the given location column set. column is one of
// the fixed location column names, never user input.
func (c *SQLiteCatalog) mark(name, column string) error {
	query := fmt.Sprintf(`
		INSERT INTO files (filename, %[1]s) VALUES (?, 1)
		ON CONFLICT (filename) DO UPDATE SET %[1]s = 1`, column)
	if _, err := c.db.Exec(query, name); err != nil {
		return fmt.Errorf("upserting %s for %s: %w", column, name, err)
	}
	return nil
}

func (c *SQLiteCatalog) Get(name string) (*backup.FileRecord, error) {
	row := c.db.QueryRow(
		`SELECT filename, in_source, in_staging, in_remote FROM files WHERE filename = ?`, name)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying catalog for %s: %w", name, err)
	}
	return rec, nil
}

func (c *SQLiteCatalog) All() ([]*backup.FileRecord, error) {
	rows, err := c.db.Query(
		`SELECT filename, in_source, in_staging, in_remote FROM files ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var records []*backup.FileRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}
	return records, nil
}

func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func scanRecord(scan func(dest ...any) error) (*backup.FileRecord, error) {
	var rec backup.FileRecord
	var inSource, inStaging, inRemote int
	if err := scan(&rec.Name, &inSource, &inStaging, &inRemote); err != nil {
		return nil, err
	}
	rec.InSource = inSource != 0
	rec.InStaging = inStaging != 0
	rec.InRemote = inRemote != 0
	return &rec, nil
}

// Compile-time check that SQLiteCatalog implements backup.Catalog.
var _ backup.Catalog = (*SQLiteCatalog)(nil)
