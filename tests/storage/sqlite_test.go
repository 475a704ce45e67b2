package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symlog/symlog-go/pkg/storage"
	"github.com/symlog/symlog-go/pkg/storage/sqlite"
)

func newSQLiteStore(t *testing.T) *sqlite.Client {
	t.Helper()
	client, err := sqlite.NewClient(&sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "memories.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testRecord(id int64, trigger, symptom string) *storage.Record {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &storage.Record{
		ID:              id,
		Kind:            "trigger",
		Trigger:         trigger,
		Symptom:         symptom,
		OccurrenceCount: 2,
		ConfidenceScore: 0.667,
		IsActive:        true,
		CreatedAt:       now,
		LastObservedAt:  now,
	}
}

func TestSQLiteUpsertAndGetAll(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "Dairy", records[0].Trigger)
	assert.Equal(t, "Bloating", records[0].Symptom)
	assert.True(t, records[0].IsActive)
	assert.InDelta(t, 0.667, records[0].ConfidenceScore, 1e-9)
}

func TestSQLiteUpsertReplacesByTuple(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))

	updated := testRecord(1, "Dairy", "Bloating")
	updated.OccurrenceCount = 5
	updated.UserConfirmed = true
	require.NoError(t, store.Upsert(ctx, updated))

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1, "matching tuple must update, not duplicate")
	assert.Equal(t, 5, records[0].OccurrenceCount)
	assert.True(t, records[0].UserConfirmed)
}

func TestSQLiteReplaceAll(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))
	require.NoError(t, store.Upsert(ctx, testRecord(2, "Gluten", "Fatigue")))

	require.NoError(t, store.ReplaceAll(ctx, []*storage.Record{
		testRecord(3, "Caffeine", "Jitters"),
	}))

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Caffeine", records[0].Trigger)
}

func TestSQLiteReplaceAllEmpty(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))
	require.NoError(t, store.ReplaceAll(ctx, nil))

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memories.db")
	ctx := context.Background()

	store, err := sqlite.NewClient(&sqlite.Config{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))
	require.NoError(t, store.Close())

	reopened, err := sqlite.NewClient(&sqlite.Config{DBPath: dbPath})
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dairy", records[0].Trigger)
}

func TestSQLiteCustomTableName(t *testing.T) {
	client, err := sqlite.NewClient(&sqlite.Config{
		DBPath:    filepath.Join(t.TempDir(), "memories.db"),
		TableName: "learned_memories",
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Upsert(ctx, testRecord(1, "Dairy", "Bloating")))
	records, err := client.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
