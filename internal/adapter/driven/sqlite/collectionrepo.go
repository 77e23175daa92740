package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CollectionStore = (*CollectionRepo)(nil)

// CollectionRepo is the SQLite implementation of the CollectionStore port.
// The whole collection lives in one kv_store row keyed by driven.CollectionKey.
type CollectionRepo struct {
	db  *DB
	key string
}

// NewCollectionRepo creates a new CollectionRepo backed by the given DB.
func NewCollectionRepo(db *DB) *CollectionRepo {
	return &CollectionRepo{db: db, key: driven.CollectionKey}
}

// Load reads and decodes the stored collection. Returns an empty collection
// when no row exists.
func (r *CollectionRepo) Load(ctx context.Context) (model.Collection, error) {
	const query = `SELECT value FROM kv_store WHERE key = ?`

	var value string
	err := r.db.Reader.QueryRowContext(ctx, query, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	repos, err := model.DecodeCollection([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("load collection: %w: %w", driven.ErrCollectionCorrupt, err)
	}

	return repos, nil
}

// Save overwrites the stored collection with repos.
func (r *CollectionRepo) Save(ctx context.Context, repos model.Collection) error {
	const query = `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	data, err := repos.Encode()
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, r.key, string(data)); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}

	return nil
}
