// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/gitcollection/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/gitcollection/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/gitcollection/internal/application"
)

const (
	pageTitle         = "gitCollection"
	noticeLookupInUse = "Aguarde a busca em andamento"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// Dashboard renders the lookup form and the collected repositories.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, http.StatusOK, "")
}

// AddRepository handles the lookup form submission. Success redirects back to
// the dashboard; a failed lookup re-renders it with the error area filled.
func (h *Handler) AddRepository(w http.ResponseWriter, r *http.Request) {
	if !validCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	identifier := r.PostFormValue("identifier")
	_, err := h.collectionSvc.SubmitIdentifier(r.Context(), identifier)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, application.ErrLookupInProgress):
		h.renderDashboard(w, r, http.StatusConflict, noticeLookupInUse)
	case errors.Is(err, application.ErrEmptyIdentifier), errors.Is(err, application.ErrLookupNotFound):
		h.renderDashboard(w, r, http.StatusUnprocessableEntity, "")
	default:
		h.logger.Error("failed to add repository", "identifier", identifier, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// RepositoryDetail renders the details view of a collected repository.
func (h *Handler) RepositoryDetail(w http.ResponseWriter, r *http.Request) {
	fullName := r.PathValue("owner") + "/" + r.PathValue("name")

	repo, ok := h.collectionSvc.Repositories().Find(fullName)
	if !ok {
		h.render(w, r, http.StatusNotFound, fullName, pages.RepositoryNotFound(fullName))
		return
	}

	h.render(w, r, http.StatusOK, repo.FullName, pages.RepositoryDetail(toRepoDetailViewModel(repo)))
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, notice string) {
	data := toDashboardViewModel(h.collectionSvc.Snapshot(), csrfToken(w, r), notice)
	h.render(w, r, status, pageTitle, pages.Dashboard(data))
}

// render writes component inside the page layout with the given status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, component templ.Component) {
	if title != pageTitle {
		title = title + " | " + pageTitle
	}
	layout := templates.Layout(title, component)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
