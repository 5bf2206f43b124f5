package boltcas

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/ans104/storage"
	"xdao.co/ans104/storage/testkit"
)

func newCAS(t *testing.T) storage.CAS {
	t.Helper()
	cas, err := Open(filepath.Join(t.TempDir(), "items.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cas.Close() })
	return cas
}

func TestBoltCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, newCAS)
	testkit.RunItemIndexConformance(t, newCAS)
}

func TestBoltCAS_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	cas, err := Open(path)
	require.NoError(t, err)

	it := testkit.SignedItem(t, 7)
	id, err := storage.PutItem(cas, it)
	require.NoError(t, err)
	require.NoError(t, cas.Close())

	cas, err = Open(path)
	require.NoError(t, err)
	defer cas.Close()

	got, err := cas.Locate(it.ID())
	require.NoError(t, err)
	require.Equal(t, id, got)

	blocks, items, err := cas.Count()
	require.NoError(t, err)
	require.Equal(t, 1, blocks)
	require.Equal(t, 1, items)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
