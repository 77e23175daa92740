package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitcollection/internal/application"
)

const maxAddRepoBody = 4 << 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	collectionSvc *application.CollectionService
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(collectionSvc *application.CollectionService, logger *slog.Logger) *Handler {
	return &Handler{
		collectionSvc: collectionSvc,
		logger:        logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/repos", h.ListRepos)
	mux.HandleFunc("POST /api/v1/repos", h.AddRepo)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ListRepos returns the collection, oldest first.
func (h *Handler) ListRepos(w http.ResponseWriter, _ *http.Request) {
	repos := h.collectionSvc.Repositories()

	resp := make([]RepoResponse, 0, len(repos))
	for _, repo := range repos {
		resp = append(resp, toRepoResponse(repo))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddRepo looks up the requested identifier and appends it to the collection.
// The body must be application/json and at most maxAddRepoBody bytes.
func (h *Handler) AddRepo(w http.ResponseWriter, r *http.Request) {
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAddRepoBody)

	var req AddRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	repo, err := h.collectionSvc.SubmitIdentifier(r.Context(), req.Identifier)
	switch {
	case errors.Is(err, application.ErrEmptyIdentifier):
		writeError(w, http.StatusBadRequest, application.MsgIdentifierRequired)
		return
	case errors.Is(err, application.ErrLookupInProgress):
		writeError(w, http.StatusConflict, "another lookup is in progress")
		return
	case errors.Is(err, application.ErrLookupNotFound):
		writeError(w, http.StatusNotFound, application.MsgRepositoryNotFound)
		return
	case err != nil:
		h.logger.Error("failed to add repo", "identifier", req.Identifier, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toRepoResponse(*repo))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Repositories: len(h.collectionSvc.Repositories()),
		Time:         time.Now().UTC().Format(time.RFC3339),
	})
}
