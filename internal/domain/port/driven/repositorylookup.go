package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
)

// Sentinel errors returned by RepositoryLookup implementations.
var (
	// ErrRepoNotFound indicates the identifier did not resolve to a repository.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrResponseShape indicates the lookup service answered with a payload
	// missing fields a RepositorySummary requires.
	ErrResponseShape = errors.New("unexpected repository response shape")
)

// RepositoryLookup defines the driven port for resolving an "owner/name"
// identifier against GitHub.
type RepositoryLookup interface {
	FetchRepository(ctx context.Context, identifier string) (*model.RepositorySummary, error)
}
