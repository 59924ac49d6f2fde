package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/floorplan/internal/db"
	"github.com/vbonduro/floorplan/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestAreaStoreCreate(t *testing.T) {
	store := NewAreaStore(openTestDB(t))
	ctx := context.Background()

	area, err := store.Create(ctx, "Main Hall", 800, 494)
	require.NoError(t, err)
	assert.NotZero(t, area.ID)
	assert.Equal(t, "Main Hall", area.Name)
	assert.Equal(t, 800.0, area.CanvasWidth)
	assert.Equal(t, 494.0, area.CanvasHeight)
}

func TestAreaStoreGetByID(t *testing.T) {
	store := NewAreaStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, "Terrace", 1024, 600)
	require.NoError(t, err)

	retrieved, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, created.Name, retrieved.Name)

	missing, err := store.GetByID(ctx, created.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAreaStoreList(t *testing.T) {
	store := NewAreaStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, "Terrace", 800, 494)
	require.NoError(t, err)
	_, err = store.Create(ctx, "Bar", 800, 494)
	require.NoError(t, err)

	areas, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, areas, 2)
	assert.Equal(t, "Bar", areas[0].Name)
	assert.Equal(t, "Terrace", areas[1].Name)
}

func TestAreaStoreDelete(t *testing.T) {
	store := NewAreaStore(openTestDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, "Temp", 800, 494)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	retrieved, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)

	assert.ErrorIs(t, store.Delete(ctx, created.ID), domain.ErrAreaNotFound)
}
