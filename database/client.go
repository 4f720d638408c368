package database

import (
	"fmt"
	"strings"

	"github.com/TorrentPicker/fie-dataset/config"
)

// supported source drivers
const (
	DriverSQLite     = "sqlite"
	DriverMySQL      = "mysql"
	DriverPostgreSQL = "postgresql"
)

var SupportedDrivers = []string{DriverSQLite, DriverMySQL, DriverPostgreSQL}

// builds the source client for the configured driver, not yet connected
func NewSourceClientFromConfig(cfg *config.Config) (DatabaseClient, error) {
	switch strings.ToLower(cfg.Source.Driver) {
	case "", DriverSQLite:
		return NewSQLiteClientFromConfig(cfg), nil
	case DriverMySQL:
		return NewMySQLClientFromConfig(cfg), nil
	case DriverPostgreSQL:
		return NewPostgreSQLClientFromConfig(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported source database type %s", cfg.Source.Driver)
	}
}
