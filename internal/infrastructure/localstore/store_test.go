package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	err := s.Put(ctx, "sample", payload{Name: "tab_switch", Count: 3})
	require.NoError(t, err)

	var got payload
	err = s.Get(ctx, "sample", &got)
	require.NoError(t, err)
	assert.Equal(t, payload{Name: "tab_switch", Count: 3}, got)
}

func TestPutOverwritesWholeValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KeyEventBuffer, []string{"a", "b", "c"}))
	require.NoError(t, s.Put(ctx, KeyEventBuffer, []string{"d"}))

	var got []string
	require.NoError(t, s.Get(ctx, KeyEventBuffer, &got))
	assert.Equal(t, []string{"d"}, got)
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	var out map[string]interface{}
	err := s.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KeyCachedStats, map[string]int{"total": 1}))
	require.NoError(t, s.Delete(ctx, KeyCachedStats))

	var out map[string]int
	assert.ErrorIs(t, s.Get(ctx, KeyCachedStats, &out), ErrNotFound)

	// Deleting an absent key is not an error
	assert.NoError(t, s.Delete(ctx, "absent"))
}
