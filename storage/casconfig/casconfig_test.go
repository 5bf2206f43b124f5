package casconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/storage"
	"xdao.co/ans104/storage/testkit"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"empty", Config{}, false},
		{"unknown", Config{Backends: []BackendConfig{{Name: "s3"}}}, false},
		{"missing name", Config{Backends: []BackendConfig{{}}}, false},
		{"duplicate id", Config{Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs"}}}, false},
		{"alias", Config{Backends: []BackendConfig{{Name: "localfs"}, {Name: "localfs", ID: "mirror"}}}, true},
		{"bad policy", Config{WritePolicy: "some", Backends: []BackendConfig{{Name: "bolt"}}}, false},
		{"all", Config{WritePolicy: "all", Backends: []BackendConfig{{Name: "bolt"}}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestOpen_ReplicatesItemsAcrossBackends(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		WritePolicy: "all",
		Backends: []BackendConfig{
			{Name: "localfs", Config: map[string]string{"dir": filepath.Join(dir, "fs")}},
			{Name: "bolt", Config: map[string]string{"path": filepath.Join(dir, "items.db")}},
		},
	}
	cas, closeFn, err := cfg.Open()
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()

	rep, ok := cas.(storage.ReplicatingCAS)
	require.True(t, ok)

	raw, err := testkit.SignedItem(t, 1).Bytes()
	require.NoError(t, err)
	id, perBackend, err := rep.PutAll(raw)
	require.NoError(t, err)
	require.Equal(t, id, perBackend["localfs"])
	require.Equal(t, id, perBackend["bolt"])

	it := testkit.SignedItem(t, 2)
	itemCID, err := storage.PutItem(cas, it)
	require.NoError(t, err)
	for _, b := range rep.Backends {
		got, err := b.CAS.(storage.ItemLocator).Locate(it.ID())
		require.NoError(t, err, b.Name)
		require.Equal(t, itemCID, got)
	}
}

func TestOpen_FirstPolicyFallsBack(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backends: []BackendConfig{
		{Name: "localfs", ID: "hot", Config: map[string]string{"dir": filepath.Join(dir, "hot")}},
		{Name: "localfs", ID: "cold", Config: map[string]string{"dir": filepath.Join(dir, "cold")}},
	}}
	cas, closeFn, err := cfg.Open()
	require.NoError(t, err)
	defer closeFn()

	multi, ok := cas.(storage.MultiCAS)
	require.True(t, ok)

	it := testkit.SignedItem(t, 3)
	_, err = storage.PutItem(multi.Adapters[1], it)
	require.NoError(t, err)

	_, err = multi.Adapters[0].(storage.ItemLocator).Locate(it.ID())
	require.True(t, storage.IsNotFound(err))
	got, _, err := storage.GetItem(cas, dataitem.NewCodec(signers.Standard()), it.ID())
	require.NoError(t, err)
	require.True(t, got.Equal(it))
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cas.json")
	body := `{"backends":[{"name":"grpc","config":{"target":"127.0.0.1:1","timeout":"1s"}}]}`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	cas, closeFn, err := cfg.Open()
	require.NoError(t, err)
	require.NotNil(t, cas)
	require.NoError(t, closeFn())

	_, err = LoadFile("")
	require.Error(t, err)

	bad := Config{Backends: []BackendConfig{{Name: "grpc", Config: map[string]string{"target": "x", "timeout": "soon"}}}}
	_, _, err = bad.Open()
	require.Error(t, err)
}
