package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/TorrentPicker/fie-dataset/config"

	_ "modernc.org/sqlite" // register driver
)

const (
	sqliteTableExistsQuery = `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
)

type SQLiteClient struct {
	Path string
	DB   *sql.DB
}

// create a SQLite client for a database file
func NewSQLiteClient(path string) *SQLiteClient {
	return &SQLiteClient{Path: path}
}

// create a SQLite source client using config file
func NewSQLiteClientFromConfig(cfg *config.Config) *SQLiteClient {
	return NewSQLiteClient(cfg.Source.Path)
}

// opens the database file, creating it if absent
func (s *SQLiteClient) Connect() error {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database %s: %w", s.Path, err)
	}

	// one logical thread of control per file
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	// ping forces the file to be created
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping SQLite database %s: %w", s.Path, err)
	}

	s.DB = db
	return nil
}

func (s *SQLiteClient) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *SQLiteClient) Conn() *sql.DB {
	return s.DB
}

func (s *SQLiteClient) ExecuteQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("db connection not established")
	}
	return s.DB.QueryContext(ctx, query, args...)
}

// looks the table up in sqlite_master
func (s *SQLiteClient) TableExists(ctx context.Context, table string) (bool, error) {
	if s.DB == nil {
		return false, fmt.Errorf("db connection not established")
	}

	var name string
	err := s.DB.QueryRowContext(ctx, sqliteTableExistsQuery, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return true, nil
}

// returns the columns of a table in declaration order
func (s *SQLiteClient) TableColumns(ctx context.Context, table string) ([]Column, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("db connection not established")
	}
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", s.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan schema of table %s: %w", table, err)
		}
		cols = append(cols, Column{Name: name, Type: ctype})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schema iteration of table %s: %w", table, err)
	}
	return cols, nil
}

func (s *SQLiteClient) QuoteIdent(id string) string {
	return quoteWith(id, `"`)
}

func (s *SQLiteClient) Placeholder(int) string {
	return "?"
}
