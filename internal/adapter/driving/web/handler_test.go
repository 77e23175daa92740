package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitcollection/internal/adapter/driving/web"
	"github.com/ericfisherdev/gitcollection/internal/application"
	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockLookup struct {
	repos map[string]model.RepositorySummary
}

func (m *mockLookup) FetchRepository(_ context.Context, identifier string) (*model.RepositorySummary, error) {
	repo, ok := m.repos[identifier]
	if !ok {
		return nil, driven.ErrRepoNotFound
	}
	return &repo, nil
}

type mockStore struct {
	repos model.Collection
}

func (m *mockStore) Load(_ context.Context) (model.Collection, error) { return m.repos.Clone(), nil }

func (m *mockStore) Save(_ context.Context, repos model.Collection) error {
	m.repos = repos.Clone()
	return nil
}

var helloWorld = model.RepositorySummary{
	FullName:    "octocat/Hello-World",
	Description: "My first repository on **GitHub**!",
	Owner:       model.RepositoryOwner{Login: "octocat", AvatarURL: "https://github.com/images/error/octocat_happy.gif"},
}

const testToken = "test-csrf-token"

// blockingLookup holds every call until release is closed.
type blockingLookup struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingLookup() *blockingLookup {
	return &blockingLookup{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingLookup) FetchRepository(ctx context.Context, _ string) (*model.RepositorySummary, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	repo := helloWorld
	return &repo, nil
}

func setup(t *testing.T, store *mockStore) (http.Handler, *application.CollectionService) {
	t.Helper()
	return setupWithLookup(t, &mockLookup{repos: map[string]model.RepositorySummary{helloWorld.FullName: helloWorld}}, store)
}

func setupWithLookup(t *testing.T, lookup driven.RepositoryLookup, store *mockStore) (http.Handler, *application.CollectionService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewCollectionService(lookup, store, logger)
	require.NoError(t, svc.Initialize(context.Background()))

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, web.NewHandler(svc, logger))
	return mux, svc
}

func postForm(h http.Handler, identifier, cookieToken, formToken string) *httptest.ResponseRecorder {
	form := url.Values{"identifier": {identifier}, "csrf_token": {formToken}}
	req := httptest.NewRequest(http.MethodPost, "/repositories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookieToken != "" {
		req.AddCookie(&http.Cookie{Name: "gitcollection_csrf", Value: cookieToken})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestDashboard_IssuesCSRFCookie(t *testing.T) {
	h, _ := setup(t, &mockStore{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "gitcollection_csrf", cookies[0].Name)
	assert.Contains(t, rec.Body.String(), `value="`+cookies[0].Value+`"`)
	assert.Contains(t, rec.Body.String(), "Catálogo de repositórios do Github")
}

func TestDashboard_ListsStoredRepositories(t *testing.T) {
	h, _ := setup(t, &mockStore{repos: model.Collection{helloWorld}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `href="/repositories/octocat/Hello-World"`)
	assert.Contains(t, body, "octocat/Hello-World")
	assert.NotContains(t, body, `class="error"`)
}

func TestAddRepository_Success(t *testing.T) {
	store := &mockStore{}
	h, svc := setup(t, store)

	rec := postForm(h, "octocat/Hello-World", testToken, testToken)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, model.Collection{helloWorld}, store.repos)
	assert.Equal(t, "", svc.LastError())
}

func TestAddRepository_NotFoundRerendersWithError(t *testing.T) {
	store := &mockStore{}
	h, _ := setup(t, store)

	rec := postForm(h, "doesnotexist/doesnotexist", testToken, testToken)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, application.MsgRepositoryNotFound)
	assert.Contains(t, body, `value="doesnotexist/doesnotexist"`)
	assert.Contains(t, body, "has-error")
	assert.Empty(t, store.repos)
}

func TestAddRepository_EmptyIdentifier(t *testing.T) {
	h, _ := setup(t, &mockStore{})

	rec := postForm(h, "", testToken, testToken)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), application.MsgIdentifierRequired)
}

func TestAddRepository_LookupInProgress(t *testing.T) {
	store := &mockStore{}
	lookup := newBlockingLookup()
	h, svc := setupWithLookup(t, lookup, store)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- postForm(h, "octocat/Hello-World", testToken, testToken) }()

	select {
	case <-lookup.started:
	case <-time.After(time.Second):
		t.Fatal("first lookup never started")
	}

	rec := postForm(h, "golang/go", testToken, testToken)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Aguarde a busca em andamento")
	assert.Contains(t, body, `class="notice"`)
	assert.NotContains(t, body, "has-error")

	close(lookup.release)
	assert.Equal(t, http.StatusSeeOther, (<-first).Code)
	assert.Equal(t, model.Collection{helloWorld}, svc.Repositories())
}

func TestAddRepository_RejectsBadCSRF(t *testing.T) {
	store := &mockStore{}
	h, _ := setup(t, store)

	for name, rec := range map[string]*httptest.ResponseRecorder{
		"no cookie": postForm(h, "octocat/Hello-World", "", testToken),
		"mismatch":  postForm(h, "octocat/Hello-World", testToken, "other"),
		"no field":  postForm(h, "octocat/Hello-World", testToken, ""),
	} {
		assert.Equal(t, http.StatusForbidden, rec.Code, name)
	}
	assert.Empty(t, store.repos)
}

func TestRepositoryDetail_Found(t *testing.T) {
	h, _ := setup(t, &mockStore{repos: model.Collection{helloWorld}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/repositories/octocat/Hello-World", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>GitHub</strong>")
	assert.Contains(t, body, `href="https://github.com/octocat/Hello-World"`)
	assert.Contains(t, body, "<title>octocat/Hello-World | gitCollection</title>")
}

func TestRepositoryDetail_NotInCollection(t *testing.T) {
	h, _ := setup(t, &mockStore{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/repositories/octocat/Hello-World", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "não está na coleção")
}

func TestStaticAssets(t *testing.T) {
	h, _ := setup(t, &mockStore{})

	for _, path := range []string{"/static/style.css", "/static/logo.svg"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
