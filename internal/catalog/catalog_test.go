package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/storage"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()

	meta := storage.RunMetadata{
		ID: "hydrogen_1", Name: "hydrogen", Timestamp: time.Unix(100, 5),
		Dim: 891, Format: "dense", Potential: "coulomb", Nodes: 10, Bins: 10, BinWidth: 4, Lmax: 2,
		QuadMode: "auto", Energies: []float64{-0.5, -0.125},
	}
	require.NoError(t, c.Put(ctx, FromMetadata(meta)))

	e, err := c.Get(ctx, "hydrogen_1")
	require.NoError(t, err)
	assert.Equal(t, 891, e.Dim)
	assert.Equal(t, meta.Timestamp.UnixNano(), e.Created.UnixNano())
	require.NotNil(t, e.Ground)
	assert.Equal(t, -0.5, *e.Ground)
	assert.Equal(t, meta.Energies, e.Energies)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPut_NoEnergies(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, FromMetadata(storage.RunMetadata{ID: "a", Name: "box"})))

	e, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, e.Ground)
	assert.Empty(t, e.Energies)
}

func TestListFilter(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()

	for i, name := range []string{"box", "hydrogen", "hydrogen"} {
		e := Entry{ID: name + string(rune('a'+i)), Name: name, Created: time.Unix(int64(i), 0), Potential: name}
		require.NoError(t, c.Put(ctx, e))
	}

	all, err := c.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "hydrogenc", all[0].ID)

	h, err := c.List(ctx, Filter{Name: "hydrogen"})
	require.NoError(t, err)
	assert.Len(t, h, 2)

	one, err := c.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, one, 1)

	require.NoError(t, c.Delete(ctx, "boxa"))
	assert.ErrorIs(t, c.Delete(ctx, "boxa"), ErrNotFound)
}

func TestSync(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	st := storage.New(t.TempDir())

	cfg := config.DefaultConfig()
	id1, err := st.Save(&storage.Run{Meta: storage.RunMetadata{Name: "one"}, Config: cfg}, config.SaveParams{})
	require.NoError(t, err)
	_, err = st.Save(&storage.Run{Meta: storage.RunMetadata{Name: "two"}, Config: cfg}, config.SaveParams{})
	require.NoError(t, err)

	added, err := c.Sync(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = c.Sync(ctx, st)
	require.NoError(t, err)
	assert.Zero(t, added)

	require.NoError(t, st.Delete(id1))
	_, err = c.Sync(ctx, st)
	require.NoError(t, err)

	entries, err := c.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "two", entries[0].Name)
}
