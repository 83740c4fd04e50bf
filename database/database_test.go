package database

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/camden-git/familytreebackend/family"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotStore(t *testing.T, keep int) *SnapshotStore {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	db, err := InitDB(filepath.Join(t.TempDir(), "tree.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotStore(db, keep)
}

func TestSnapshotStoreLoadsNewest(t *testing.T) {
	store := newTestSnapshotStore(t, 0)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(family.People{
		"p1": {ID: "p1", Name: "First", Gender: family.Male, ChildrenIDs: []family.ID{}},
	}))
	seed := family.SeedPeople()
	require.NoError(t, store.Save(seed))

	loaded, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seed, loaded)

	snaps, err := store.History(0)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 6, snaps[0].PersonCount)
	assert.Equal(t, 1, snaps[1].PersonCount)

	newest, err := store.History(1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, snaps[0].ID, newest[0].ID)
}

func TestSnapshotStorePrunes(t *testing.T) {
	store := newTestSnapshotStore(t, 2)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(family.SeedPeople()))
	}

	snaps, err := ListSnapshots(store.DB, 0)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	require.NoError(t, store.Clear())
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
