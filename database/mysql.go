package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TorrentPicker/fie-dataset/config"

	_ "github.com/go-sql-driver/mysql"
)

const (
	mysqlTableExistsQuery = `SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = DATABASE() AND table_name = ? AND table_type = 'BASE TABLE'`

	// DATA_TYPE rather than COLUMN_TYPE: "int(11) unsigned" is not a valid SQLite type name
	mysqlColumnsQuery = `SELECT column_name, data_type FROM information_schema.columns
WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position`
)

type MySQLClient struct {
	User     string
	Password string
	Host     string
	Port     int
	DBName   string
	DB       *sql.DB
}

// create a MySQL client using manual parameters, (for tests)
func NewMySQLClient(user, password, host string, port int, dbname string) *MySQLClient {
	return &MySQLClient{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
		DBName:   dbname,
	}
}

// create a new MySQL client using config file
func NewMySQLClientFromConfig(cfg *config.Config) *MySQLClient {
	return &MySQLClient{
		User:     cfg.Source.User,
		Password: cfg.Source.Password,
		Host:     cfg.Source.Host,
		Port:     cfg.Source.Port,
		DBName:   cfg.Source.DBName,
	}
}

// to connect with the MySQL DB
func (c *MySQLClient) Connect() error {
	//format: user:password@tcp(host:port)/name
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", c.User, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping the MySQL database: %w", err)
	}

	c.DB = db
	return nil
}

// closes the database connection
func (c *MySQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *MySQLClient) Conn() *sql.DB {
	return c.DB
}

// executes the query to return the rows
func (c *MySQLClient) ExecuteQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("db connection not established")
	}
	return c.DB.QueryContext(ctx, query, args...)
}

func (c *MySQLClient) TableExists(ctx context.Context, table string) (bool, error) {
	if c.DB == nil {
		return false, fmt.Errorf("db connection not established")
	}

	var count int64
	if err := c.DB.QueryRowContext(ctx, mysqlTableExistsQuery, table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return count > 0, nil
}

func (c *MySQLClient) TableColumns(ctx context.Context, table string) ([]Column, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("db connection not established")
	}
	return scanColumns(ctx, c.DB, mysqlColumnsQuery, table)
}

func (c *MySQLClient) QuoteIdent(id string) string {
	return quoteWith(id, "`")
}

func (c *MySQLClient) Placeholder(int) string {
	return "?"
}

// reads (name, type) pairs from an information_schema query
func scanColumns(ctx context.Context, db *sql.DB, query, table string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan schema of table %s: %w", table, err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schema iteration of table %s: %w", table, err)
	}
	return cols, nil
}
