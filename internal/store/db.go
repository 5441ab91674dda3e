// Package store persists deduplicated Poster records in a local SQLite
// database. Each record kind lives in its own table keyed by record id, and
// merges apply last-write-wins on key collisions.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNothingStored is returned by Merge when the batch is empty and no prior
// data exists, leaving nothing to persist or compute on.
var ErrNothingStored = errors.New("nothing stored: empty batch and no existing records")

// timeLayout is how timestamps are stored. The layout sorts lexicographically,
// so MIN/MAX on the column work without parsing.
const timeLayout = "2006-01-02 15:04:05"

// DB wraps the SQLite database holding the record stores.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the store database and ensures all record
// tables exist.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to store database: %w", err), closeErr)
	}

	s := &DB{db: db, path: dbPath}
	for _, schema := range allSchemas {
		if _, err := db.Exec(schema); err != nil {
			closeErr := db.Close()
			return nil, errors.Join(fmt.Errorf("failed to create store table: %w", err), closeErr)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// count returns the number of rows in a whitelisted table.
func (d *DB) count(table string) (int, error) {
	if err := validateTableName(table); err != nil {
		return 0, err
	}

	var n int
	if err := d.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

// timeRange returns the min and max value of a timestamp column, with ok
// false when the table is empty.
func (d *DB) timeRange(table, column string) (minVal, maxVal string, ok bool, err error) {
	if err := validateTableName(table); err != nil {
		return "", "", false, err
	}

	var minNull, maxNull sql.NullString
	query := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", column, column, table)
	if err := d.db.QueryRow(query).Scan(&minNull, &maxNull); err != nil {
		return "", "", false, fmt.Errorf("failed to read time range of %s: %w", table, err)
	}
	if !minNull.Valid || !maxNull.Valid {
		return "", "", false, nil
	}
	return minNull.String, maxNull.String, true, nil
}
