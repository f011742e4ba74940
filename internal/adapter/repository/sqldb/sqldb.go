// Package sqldb provides a history storage on top of a SQL database.
// It works with any sqlx driver whose dialect supports
// INSERT ... ON CONFLICT, which covers PostgreSQL and SQLite.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/online-tools/internal/entity"
)

// Storage keeps values in the kv_entries table.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	const op = "repository.sqldb.Storage.Load"

	var value string
	query := s.db.Rebind(`SELECT entry_value FROM kv_entries WHERE entry_key = ?`)

	err := s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrKeyNotFound)
		}

		return "", fmt.Errorf("%s: failed to get entry: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Save(ctx context.Context, key, value string) error {
	const op = "repository.sqldb.Storage.Save"

	query := s.db.Rebind(`INSERT INTO kv_entries(entry_key, entry_value)
		VALUES (?, ?)
		ON CONFLICT (entry_key) DO UPDATE
		SET entry_value = excluded.entry_value, updated_at = CURRENT_TIMESTAMP`)

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to save entry: %w", op, err)
	}

	return nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	const op = "repository.sqldb.Storage.Remove"

	query := s.db.Rebind(`DELETE FROM kv_entries WHERE entry_key = ?`)

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%s: failed to remove entry: %w", op, err)
	}

	return nil
}
