// Package bolt implements the CollectionStore port on a bbolt file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

const bucketCollection = "collection" // key: driven.CollectionKey -> Collection JSON

// Compile-time interface satisfaction check.
var _ driven.CollectionStore = (*Store)(nil)

// Store is the bbolt implementation of the CollectionStore port.
type Store struct {
	storage *bbolt.DB
}

// Open opens (or creates) the bbolt database at path and ensures the
// collection bucket exists.
func Open(path string) (*Store, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCollection))
		return err
	}); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{storage: instance}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.storage.Close()
}

// Load reads and decodes the stored collection. Returns an empty collection
// when the key is absent.
func (s *Store) Load(ctx context.Context) (model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	if err := s.storage.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketCollection))
		if b == nil {
			return errors.New("collection bucket missing")
		}
		// Values are only valid for the life of the transaction.
		if v := b.Get([]byte(driven.CollectionKey)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	if data == nil {
		return model.Collection{}, nil
	}

	repos, err := model.DecodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w: %w", driven.ErrCollectionCorrupt, err)
	}

	return repos, nil
}

// Save overwrites the stored collection with repos.
func (s *Store) Save(ctx context.Context, repos model.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := repos.Encode()
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	if err := s.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketCollection)).Put([]byte(driven.CollectionKey), data)
	}); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}

	return nil
}
