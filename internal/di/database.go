package di

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/newsroomhq/zonecontent/internal/runtimeconfig"
)

// ErrStorageDriverUnknown is returned for drivers other than sqlite and
// postgres.
var ErrStorageDriverUnknown = errors.New("zonecontent di: storage driver is not supported")

// ErrStorageDSNRequired is returned when a SQL driver is configured without a
// connection string.
var ErrStorageDSNRequired = errors.New("zonecontent di: storage dsn is required")

// OpenDatabase opens a bun.DB for the configured storage driver. Callers own
// the returned handle and should close it on shutdown.
func OpenDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrStorageDSNRequired
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		// SQLite serializes writers; a single connection avoids
		// table-lock errors under concurrent transactions.
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres", "postgresql":
		sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Driver)
	}
}
