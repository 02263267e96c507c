package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	database "github.com/ewasteapp/ewaste-client/db"
)

func newTestRepo(t *testing.T, name string) *SQLiteCacheRepository {
	t.Helper()
	dbService, err := database.NewDBService("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbService.Close() })
	return NewSQLiteCacheRepository(dbService.DB)
}

func TestReplaceCategories_ConvergesToGivenSet(t *testing.T) {
	repo := newTestRepo(t, "repl_categories")
	ctx := context.Background()

	err := repo.ReplaceCategories(ctx, []Category{
		{ID: 1, Name: "Plastik", Description: "Botol, kantong"},
		{ID: 2, Name: "Baterai"},
	})
	assert.NoError(t, err)

	// Second replace drops id 2, the cache must follow.
	err = repo.ReplaceCategories(ctx, []Category{
		{ID: 1, Name: "Plastik", Description: "Botol, kantong"},
		{ID: 3, Name: "Elektronik"},
	})
	assert.NoError(t, err)

	got, err := repo.Categories(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: 1, Name: "Plastik", Description: "Botol, kantong"},
		{ID: 3, Name: "Elektronik"},
	}, got)
}

func TestReplaceCategories_EmptySetClearsCache(t *testing.T) {
	repo := newTestRepo(t, "repl_categories_empty")
	ctx := context.Background()

	assert.NoError(t, repo.ReplaceCategories(ctx, []Category{{ID: 1, Name: "Plastik"}}))
	assert.NoError(t, repo.ReplaceCategories(ctx, nil))

	got, err := repo.Categories(ctx)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertWasteTypes_PreservesOtherCategories(t *testing.T) {
	repo := newTestRepo(t, "upsert_types")
	ctx := context.Background()

	assert.NoError(t, repo.UpsertWasteTypes(ctx, []WasteType{
		{ID: 20, Name: "Kabel", CategoryID: 7},
	}))
	assert.NoError(t, repo.UpsertWasteTypes(ctx, []WasteType{
		{ID: 10, Name: "Battery", CategoryID: 5},
	}))

	all, err := repo.WasteTypes(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	other, err := repo.WasteTypesByCategory(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, []WasteType{{ID: 20, Name: "Kabel", CategoryID: 7}}, other)
}

func TestUpsertWasteTypes_ReplacesRowByID(t *testing.T) {
	repo := newTestRepo(t, "upsert_replace")
	ctx := context.Background()

	assert.NoError(t, repo.UpsertWasteTypes(ctx, []WasteType{{ID: 10, Name: "Battery", CategoryID: 5}}))
	assert.NoError(t, repo.UpsertWasteTypes(ctx, []WasteType{{ID: 10, Name: "Li-ion Battery", CategoryID: 5}}))

	got, err := repo.WasteTypesByCategory(ctx, 5)
	assert.NoError(t, err)
	assert.Equal(t, []WasteType{{ID: 10, Name: "Li-ion Battery", CategoryID: 5}}, got)
}

func TestReplaceWasteTypes_DropsStaleRows(t *testing.T) {
	repo := newTestRepo(t, "repl_types")
	ctx := context.Background()

	assert.NoError(t, repo.UpsertWasteTypes(ctx, []WasteType{
		{ID: 10, Name: "Battery", CategoryID: 5},
		{ID: 20, Name: "Kabel", CategoryID: 7},
	}))
	assert.NoError(t, repo.ReplaceWasteTypes(ctx, []WasteType{
		{ID: 30, Name: "Monitor", CategoryID: 2},
	}))

	got, err := repo.WasteTypes(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []WasteType{{ID: 30, Name: "Monitor", CategoryID: 2}}, got)
}
