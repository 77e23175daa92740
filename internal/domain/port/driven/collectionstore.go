package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
)

// CollectionKey is the fixed key the whole collection is stored under.
const CollectionKey = "@GitCollection:repositories"

// ErrCollectionCorrupt indicates the stored collection value could not be decoded.
var ErrCollectionCorrupt = errors.New("stored collection is corrupt")

// CollectionStore defines the driven port for collection persistence.
// The collection is stored as a single value; Save overwrites it entirely.
// Load returns an empty collection and nil error when nothing is stored, and an
// error wrapping ErrCollectionCorrupt when the stored value cannot be decoded.
type CollectionStore interface {
	Load(ctx context.Context) (model.Collection, error)
	Save(ctx context.Context, repos model.Collection) error
}
