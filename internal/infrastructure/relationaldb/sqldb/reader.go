// Package sqldb provides a database/sql implementation of the SourceReader port.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "modernc.org/sqlite"             // Pure Go SQLite driver

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/infrastructure/config"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// reIdentifier matches a table name, optionally schema qualified.
var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Reader streams source table rows over database/sql.
type Reader struct {
	db     *sql.DB
	driver string
}

// NewReader opens a source database.
func NewReader(cfg config.SourceConfig) (*Reader, error) {
	if cfg.DSN == "" {
		return nil, errors.New("source dsn is required")
	}

	switch cfg.Driver {
	case DriverSQLite, DriverPgx, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s (supported: sqlite, pgx, postgres)", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// Set busy timeout to avoid "database is locked" errors
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	}

	return NewReaderFromDB(db, cfg.Driver), nil
}

// NewReaderFromDB wraps an already opened database.
func NewReaderFromDB(db *sql.DB, driver string) *Reader {
	return &Reader{db: db, driver: driver}
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Driver returns the driver name the reader was opened with.
func (r *Reader) Driver() string {
	return r.driver
}

// Ping verifies the database is reachable.
func (r *Reader) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging %s database: %w", r.driver, err)
	}
	return nil
}

// StreamRows selects every row of table in storage order and calls fn for
// each. Only one row is alive at a time.
func (r *Reader) StreamRows(ctx context.Context, table string, fn func(entities.Row) error) error {
	quoted, err := QuoteTable(table)
	if err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return fmt.Errorf("querying %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", table, err)
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning row of %s: %w", table, err)
		}
		if err := fn(toRow(columns, values)); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows of %s: %w", table, err)
	}
	return nil
}

// toRow copies scanned values into a Row. Byte slices are reused by the
// driver between scans, so text columns are copied out as strings.
func toRow(columns []string, values []any) entities.Row {
	row := make(entities.Row, len(columns))
	for i, col := range columns {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row
}

// QuoteTable validates and double-quotes a table name.
func QuoteTable(table string) (string, error) {
	if !reIdentifier.MatchString(table) {
		return "", fmt.Errorf("invalid table name: %q", table)
	}
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, "."), nil
}
