package storage

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(name string) *ModuleRecord {
	return &ModuleRecord{
		Name:           name,
		SourceFiles:    []string{"/src/" + name + ".h", "/src/" + name + ".cpp"},
		DescriptorPath: "/src/" + name + ".cppbind",
		ContentHash:    sha256.Sum256([]byte(name)),
		ArtifactPath:   "/cache/" + name + ".so",
		Status:         "built",
		BuiltAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestUpsertAndGetModule(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("gamekit")
	require.NoError(t, store.UpsertModule(ctx, rec))
	assert.Positive(t, rec.ID)

	got, err := store.GetModule(ctx, "gamekit")
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.SourceFiles, got.SourceFiles)
	assert.Equal(t, rec.DescriptorPath, got.DescriptorPath)
	assert.Equal(t, rec.ContentHash, got.ContentHash)
	assert.Equal(t, rec.ArtifactPath, got.ArtifactPath)
	assert.Equal(t, "built", got.Status)
}

func TestGetModuleNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetModule(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertReplacesByName(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	rec := testRecord("gamekit")
	require.NoError(t, store.UpsertModule(ctx, rec))
	firstID := rec.ID

	updated := testRecord("gamekit")
	updated.ContentHash = sha256.Sum256([]byte("changed"))
	updated.Status = "failed"
	require.NoError(t, store.UpsertModule(ctx, updated))
	assert.Equal(t, firstID, updated.ID, "upsert must keep the same row")

	got, err := store.GetModule(ctx, "gamekit")
	require.NoError(t, err)
	assert.Equal(t, updated.ContentHash, got.ContentHash)
	assert.Equal(t, "failed", got.Status)

	all, err := store.ListModules(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListModulesOrderedByName(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.UpsertModule(ctx, testRecord(name)))
	}

	all, err := store.ListModules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "mid", all[1].Name)
	assert.Equal(t, "zeta", all[2].Name)
}

func TestDeleteModule(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertModule(ctx, testRecord("gamekit")))
	require.NoError(t, store.DeleteModule(ctx, "gamekit"))

	_, err := store.GetModule(ctx, "gamekit")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent module is not an error.
	assert.NoError(t, store.DeleteModule(ctx, "gamekit"))
}

func TestRegistryOnlyBuiltModules(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	built := testRecord("gamekit")
	require.NoError(t, store.UpsertModule(ctx, built))

	failed := testRecord("broken")
	failed.Status = "failed"
	require.NoError(t, store.UpsertModule(ctx, failed))

	noArtifact := testRecord("phantom")
	noArtifact.ArtifactPath = ""
	require.NoError(t, store.UpsertModule(ctx, noArtifact))

	entries, err := store.Registry(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only built modules with artifacts are discoverable")
	assert.Equal(t, "gamekit", entries[0].Module)
	assert.Equal(t, built.ArtifactPath, entries[0].ArtifactPath)
	assert.Equal(t, built.ContentHash, entries[0].ContentHash)
}

func TestTransactionCommit(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertModule(ctx, testRecord("gamekit")))
	require.NoError(t, tx.Commit())

	_, err = store.GetModule(ctx, "gamekit")
	assert.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertModule(ctx, testRecord("gamekit")))
	require.NoError(t, tx.Rollback())

	_, err = store.GetModule(ctx, "gamekit")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	first, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.UpsertModule(context.Background(), testRecord("gamekit")))
	require.NoError(t, first.Close())

	// Reopening applies migrations again without losing data.
	second, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	got, err := second.GetModule(context.Background(), "gamekit")
	require.NoError(t, err)
	assert.Equal(t, "gamekit", got.Name)
}
