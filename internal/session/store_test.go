package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore(10)

	id := store.Put(&Snapshot{
		Rows:            []domain.InventoryRow{{SKUCode: "SKU001"}},
		ForecastColumns: []string{"W01-25"},
		HasPO:           true,
	})
	require.NotEmpty(t, id)

	snap, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.True(t, snap.HasPO)
	assert.Len(t, snap.Rows, 1)
	assert.WithinDuration(t, time.Now(), snap.CreatedAt, time.Second)
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore(10)

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreEvictsOldest(t *testing.T) {
	store := NewStore(2)

	first := store.Put(&Snapshot{})
	time.Sleep(time.Millisecond)
	second := store.Put(&Snapshot{})
	time.Sleep(time.Millisecond)
	third := store.Put(&Snapshot{})

	assert.Equal(t, 2, store.Len())

	_, err := store.Get(first)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(second)
	assert.NoError(t, err)
	_, err = store.Get(third)
	assert.NoError(t, err)
}

func TestStoreIDsAreUnique(t *testing.T) {
	store := NewStore(100)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := store.Put(&Snapshot{})
		assert.False(t, seen[id])
		seen[id] = true
	}
}
