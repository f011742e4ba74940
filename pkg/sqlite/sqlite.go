// Package sqlite opens file-backed SQLite databases through the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// URL returns the golang-migrate database URL for the file at path.
func URL(path string) string {
	return "sqlite://" + path
}

// New opens the database file at path. SQLite allows a single writer, so the
// pool is limited to one connection.
func New(ctx context.Context, path string) (*sqlx.DB, error) {
	const op = "sqlite.New"

	db, err := sqlx.ConnectContext(ctx, DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetMaxOpenConns(1)

	return db, nil
}
