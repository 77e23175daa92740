package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ericfisherdev/gitcollection/internal/domain/model"
	"github.com/ericfisherdev/gitcollection/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSummary(fullName, description string) model.RepositorySummary {
	owner, _, _ := strings.Cut(fullName, "/")
	return model.RepositorySummary{
		FullName:    fullName,
		Description: description,
		Owner: model.RepositoryOwner{
			Login:     owner,
			AvatarURL: "https://avatars.githubusercontent.com/u/583231?v=4",
		},
	}
}

func TestCollectionRepo_Load_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)

	got, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollectionRepo_SaveAndLoad_PreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)
	ctx := context.Background()

	want := model.Collection{
		makeSummary("octocat/Hello-World", "My first repository on GitHub!"),
		makeSummary("golang/go", "The Go programming language"),
		makeSummary("octocat/Hello-World", ""),
	}
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollectionRepo_Save_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, model.Collection{makeSummary("a/one", "")}))
	require.NoError(t, repo.Save(ctx, model.Collection{makeSummary("b/two", ""), makeSummary("c/three", "")}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b/two", got[0].FullName)
	assert.Equal(t, "c/three", got[1].FullName)

	var rows int
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_store`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCollectionRepo_Save_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)
	ctx := context.Background()
	repos := model.Collection{makeSummary("octocat/Hello-World", "desc")}

	require.NoError(t, repo.Save(ctx, repos))
	first := storedValue(t, db, driven.CollectionKey)
	require.NoError(t, repo.Save(ctx, repos))
	second := storedValue(t, db, driven.CollectionKey)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `[{"full_name":"octocat/Hello-World","description":"desc","owner":{"login":"octocat","avatar_url":"https://avatars.githubusercontent.com/u/583231?v=4"}}]`, first)
}

func TestCollectionRepo_Save_NilStoresEmptyArray(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)

	require.NoError(t, repo.Save(context.Background(), nil))

	assert.Equal(t, "[]", storedValue(t, db, driven.CollectionKey))
}

func TestCollectionRepo_Load_Corrupt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepo(db)
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx, `INSERT INTO kv_store (key, value) VALUES (?, ?)`, driven.CollectionKey, `{not json`)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrCollectionCorrupt)
}

func TestNewDB_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.Equal(t, path, db.Path())

	// Second run is a no-op.
	version, err = RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}
