package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/TorrentPicker/fie-dataset/config"
	_ "github.com/lib/pq"
)

const (
	postgresTableExistsQuery = `SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = current_schema() AND table_name = $1 AND table_type = 'BASE TABLE'`

	postgresColumnsQuery = `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
)

type PostgreSQLClient struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	DB       *sql.DB
}

func NewPostgreSQLClient(user, password, host string, port int, dbname string) *PostgreSQLClient {
	return &PostgreSQLClient{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
		DBName:   dbname,
	}
}

func NewPostgreSQLClientFromConfig(cfg *config.Config) *PostgreSQLClient {
	return &PostgreSQLClient{
		User:     cfg.Source.User,
		Password: cfg.Source.Password,
		Host:     cfg.Source.Host,
		Port:     cfg.Source.Port,
		DBName:   cfg.Source.DBName,
	}
}

// connect to Postgresql database
func (p *PostgreSQLClient) Connect() error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", p.Host, p.Port, p.User, p.Password, p.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open Postgresql connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgresql database: %w", err)
	}
	p.DB = db
	return nil
}

// Close the database connection
func (p *PostgreSQLClient) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}

func (p *PostgreSQLClient) Conn() *sql.DB {
	return p.DB
}

// Executing a query
func (p *PostgreSQLClient) ExecuteQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	return p.DB.QueryContext(ctx, query, args...)
}

func (p *PostgreSQLClient) TableExists(ctx context.Context, table string) (bool, error) {
	if p.DB == nil {
		return false, fmt.Errorf("database connection not established")
	}

	var count int64
	if err := p.DB.QueryRowContext(ctx, postgresTableExistsQuery, table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return count > 0, nil
}

func (p *PostgreSQLClient) TableColumns(ctx context.Context, table string) ([]Column, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	return scanColumns(ctx, p.DB, postgresColumnsQuery, table)
}

// quoted names are case sensitive, matching information_schema lookups
func (p *PostgreSQLClient) QuoteIdent(id string) string {
	return quoteWith(id, `"`)
}

func (p *PostgreSQLClient) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
