package database

import (
	"context"
	"database/sql"
)

// Column is a column definition as reported by a catalog: its name and declared type.
type Column struct {
	Name string
	Type string
}

// Interface shared by every dialect client, source or destination
type DatabaseClient interface {
	Connect() error
	Close() error
	Conn() *sql.DB

	TableExists(ctx context.Context, table string) (bool, error)
	TableColumns(ctx context.Context, table string) ([]Column, error)
	ExecuteQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	QuoteIdent(id string) string
	Placeholder(n int) string
}
