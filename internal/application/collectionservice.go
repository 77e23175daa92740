// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

// User-facing messages shown in the error area of the lookup form.
const (
	MsgIdentifierRequired = "Informe o username/repositorio"
	MsgRepositoryNotFound = "Repositorio não encontrado no github"
)

// Errors returned by SubmitLookup. Each one is also reflected in LastError
// except ErrLookupInProgress, which leaves state untouched.
var (
	ErrEmptyIdentifier  = errors.New("repository identifier required")
	ErrLookupNotFound   = errors.New("repository lookup failed")
	ErrLookupInProgress = errors.New("a repository lookup is already in progress")
)

// CollectionSnapshot is a consistent copy of the manager state.
type CollectionSnapshot struct {
	Repositories model.Collection
	PendingInput string
	LastError    string
}

// CollectionService holds the ordered collection of looked-up repositories,
// mirrors it to the CollectionStore on every change, and resolves new
// identifiers through the RepositoryLookup port.
type CollectionService struct {
	lookup driven.RepositoryLookup
	store  driven.CollectionStore
	logger *slog.Logger

	mu           sync.RWMutex
	collection   model.Collection
	pendingInput string
	lastError    string
	dirty        bool // set while the store lags behind the in-memory collection

	// inFlight is a single-slot guard; a lookup holds the token for its duration.
	inFlight chan struct{}
}

// NewCollectionService creates a CollectionService with an empty collection.
// Call Initialize to hydrate it from the store.
func NewCollectionService(lookup driven.RepositoryLookup, store driven.CollectionStore, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectionService{
		lookup:     lookup,
		store:      store,
		logger:     logger,
		collection: model.Collection{},
		inFlight:   make(chan struct{}, 1),
	}
}

// Initialize replaces the in-memory collection with the stored one. A missing
// value yields an empty collection. A corrupt value is logged and also yields
// an empty collection; the corrupt value is left in place until the next
// mutation overwrites it. Other store errors are returned.
func (s *CollectionService) Initialize(ctx context.Context) error {
	repos, err := s.store.Load(ctx)
	if errors.Is(err, driven.ErrCollectionCorrupt) {
		s.logger.Warn("stored collection is corrupt, starting empty", "error", err)
		repos = model.Collection{}
	} else if err != nil {
		return fmt.Errorf("initialize collection: %w", err)
	}

	s.mu.Lock()
	s.collection = repos.Clone()
	s.mu.Unlock()

	s.logger.Info("collection loaded", "repositories", len(repos))
	return nil
}

// SetPendingInput replaces the identifier typed into the lookup form.
func (s *CollectionService) SetPendingInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingInput = text
}

// SubmitLookup resolves the pending identifier and appends the result.
//
// An empty identifier sets LastError to MsgIdentifierRequired and returns
// ErrEmptyIdentifier. A failed lookup of any kind sets LastError to
// MsgRepositoryNotFound, keeps the collection and pending input, and returns
// an error wrapping ErrLookupNotFound and the cause. On success the entry is
// appended, persisted, and the pending input and LastError are cleared.
// A call made while another lookup is outstanding returns ErrLookupInProgress
// without touching state.
func (s *CollectionService) SubmitLookup(ctx context.Context) (*model.RepositorySummary, error) {
	if !s.acquire() {
		return nil, ErrLookupInProgress
	}
	defer s.release()

	return s.submit(ctx)
}

// SubmitIdentifier sets the pending input to text and submits it as one step,
// so concurrent form posts cannot overwrite each other's input between the
// two calls. Results and errors are those of SubmitLookup.
func (s *CollectionService) SubmitIdentifier(ctx context.Context, text string) (*model.RepositorySummary, error) {
	if !s.acquire() {
		return nil, ErrLookupInProgress
	}
	defer s.release()

	s.SetPendingInput(text)
	return s.submit(ctx)
}

func (s *CollectionService) acquire() bool {
	select {
	case s.inFlight <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *CollectionService) release() { <-s.inFlight }

// submit runs one lookup. The caller must hold the in-flight slot.
func (s *CollectionService) submit(ctx context.Context) (*model.RepositorySummary, error) {
	s.mu.Lock()
	identifier := s.pendingInput
	if strings.TrimSpace(identifier) == "" {
		s.lastError = MsgIdentifierRequired
		s.mu.Unlock()
		return nil, ErrEmptyIdentifier
	}
	s.mu.Unlock()

	repo, err := s.lookup.FetchRepository(ctx, identifier)
	if err != nil {
		s.logger.Info("repository lookup failed", "identifier", identifier, "error", err)
		s.setLastError(MsgRepositoryNotFound)
		return nil, fmt.Errorf("%w: %s: %w", ErrLookupNotFound, identifier, err)
	}

	s.mu.Lock()
	s.collection = s.collection.Append(*repo)
	s.pendingInput = ""
	s.lastError = ""
	snapshot := s.collection.Clone()
	s.mu.Unlock()

	s.logger.Info("repository added", "full_name", repo.FullName, "repositories", len(snapshot))

	if err := s.save(ctx, snapshot); err != nil {
		return repo, err
	}

	return repo, nil
}

// Persist writes the entire in-memory collection to the store.
func (s *CollectionService) Persist(ctx context.Context) error {
	return s.save(ctx, s.Repositories())
}

// Flush persists the collection only if an earlier save failed. A store that
// was never mutated, including one holding a corrupt value, is left as is.
func (s *CollectionService) Flush(ctx context.Context) error {
	s.mu.RLock()
	dirty := s.dirty
	s.mu.RUnlock()

	if !dirty {
		return nil
	}
	return s.Persist(ctx)
}

func (s *CollectionService) save(ctx context.Context, repos model.Collection) error {
	err := s.store.Save(ctx, repos)

	s.mu.Lock()
	s.dirty = err != nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to persist collection", "repositories", len(repos), "error", err)
		return fmt.Errorf("persist collection: %w", err)
	}
	return nil
}

func (s *CollectionService) setLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// Repositories returns a copy of the collection, oldest first.
func (s *CollectionService) Repositories() model.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Clone()
}

// PendingInput returns the identifier currently held for the lookup form.
func (s *CollectionService) PendingInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingInput
}

// LastError returns the user-facing error message, or "" when there is none.
func (s *CollectionService) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Snapshot returns the collection, pending input and last error read together.
func (s *CollectionService) Snapshot() CollectionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CollectionSnapshot{
		Repositories: s.collection.Clone(),
		PendingInput: s.pendingInput,
		LastError:    s.lastError,
	}
}
