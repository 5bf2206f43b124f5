package bundle_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

func signedItems(t *testing.T, c *dataitem.Codec, n int) []*dataitem.Item {
	t.Helper()
	out := make([]*dataitem.Item, n)
	for i := range out {
		it, err := c.New(signers.TypeED25519, dataitem.Fields{
			Tags: []tags.Tag{{Name: "Index", Value: strings.Repeat("i", i+1)}},
			Data: bytes.Repeat([]byte{byte(i)}, 10*(i+1)),
		})
		require.NoError(t, err)
		out[i], err = c.Sign(it, keys.FixedSeed(byte(0x10+i)))
		require.NoError(t, err)
	}
	return out
}

func TestBuildParse_IDsAndItemAt(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	items := signedItems(t, c, 3)

	raw, err := bundle.Build(items)
	require.NoError(t, err)

	ids, err := bundle.IDs(raw)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	bd, err := bundle.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 3, bd.Len())
	require.Equal(t, uint64(bundle.CountSize+3*bundle.EntrySize), bd.HeaderSize())

	offset := bd.HeaderSize()
	for k, it := range items {
		require.Equal(t, it.ID(), ids[k])
		require.Equal(t, it.IDString(), bd.IDStrings()[k])

		e := bd.Entries()[k]
		require.Equal(t, offset, e.Offset)
		require.Equal(t, uint64(it.Size()), e.Size)
		offset += e.Size

		got, err := bd.ItemAt(c, k)
		require.NoError(t, err)
		require.True(t, got.Equal(it))
	}
	require.Equal(t, uint64(len(raw)), offset)
}

func TestBuild_SingleItemScenario(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	it, err := c.New(signers.TypeSolana, dataitem.Fields{})
	require.NoError(t, err)
	it, err = c.Sign(it, keys.FixedSeed(0x01))
	require.NoError(t, err)

	raw, err := bundle.Build([]*dataitem.Item{it})
	require.NoError(t, err)
	ids, err := bundle.IDs(raw)
	require.NoError(t, err)
	require.Equal(t, [][]byte{dataitem.ComputeID(it.Signature())}, ids)
}

func TestBuild_RejectsUnsigned(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	items := signedItems(t, c, 2)
	unsigned, err := c.New(signers.TypeED25519, dataitem.Fields{Data: []byte("x")})
	require.NoError(t, err)

	_, err = bundle.Build([]*dataitem.Item{items[0], unsigned, items[1]})
	require.ErrorIs(t, err, model.ErrUnsignedItemInBundle)
	require.True(t, model.IsKind(err, model.KindPolicy))

	_, err = bundle.Build([]*dataitem.Item{nil})
	require.ErrorIs(t, err, model.ErrUnsignedItemInBundle)
}

func TestBuild_Empty(t *testing.T) {
	raw, err := bundle.Build(nil)
	require.NoError(t, err)
	require.Equal(t, make([]byte, bundle.CountSize), raw)

	bd, err := bundle.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 0, bd.Len())
}

func TestParse_HeaderErrors(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	raw, err := bundle.Build(signedItems(t, c, 2))
	require.NoError(t, err)

	_, err = bundle.ParseHeader(raw[:31])
	require.ErrorIs(t, err, model.ErrTruncatedBundleHeader)

	_, err = bundle.ParseHeader(raw[:bundle.CountSize+bundle.EntrySize+10])
	require.ErrorIs(t, err, model.ErrTruncatedBundleHeader)

	huge := bytes.Clone(raw)
	huge[bundle.CountSize-1] = 1
	_, err = bundle.ParseHeader(huge)
	require.ErrorIs(t, err, model.ErrTruncatedBundleHeader)
}

func TestParse_TruncatedTrailingByte(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	raw, err := bundle.Build(signedItems(t, c, 3))
	require.NoError(t, err)
	short := raw[:len(raw)-1]

	_, err = bundle.Parse(short)
	require.ErrorIs(t, err, model.ErrDeclaredSizeExceedsBuffer)

	bd, err := bundle.ParseHeader(short)
	require.NoError(t, err)
	for k := 0; k < 2; k++ {
		_, err := bd.ItemAt(c, k)
		require.NoError(t, err)
	}
	_, err = bd.ItemAt(c, 2)
	require.ErrorIs(t, err, model.ErrDeclaredSizeExceedsBuffer)
}

func TestParse_TrailingBytes(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	raw, err := bundle.Build(signedItems(t, c, 1))
	require.NoError(t, err)

	_, err = bundle.Parse(append(bytes.Clone(raw), 0xee))
	require.ErrorIs(t, err, model.ErrTrailingBundleBytes)
}

func TestItemAt_IDMismatchAndRange(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	raw, err := bundle.Build(signedItems(t, c, 2))
	require.NoError(t, err)

	forged := bytes.Clone(raw)
	forged[bundle.CountSize+32] ^= 0xff // first byte of entry 0's id
	bd, err := bundle.Parse(forged)
	require.NoError(t, err)
	_, err = bd.ItemAt(c, 0)
	require.ErrorIs(t, err, model.ErrIDMismatch)
	_, err = bd.ItemAt(c, 1)
	require.NoError(t, err)

	_, err = bd.Raw(2)
	require.ErrorIs(t, err, model.ErrIndexOutOfRange)
	_, err = bd.Raw(-1)
	require.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestParseHeader_OversizedEntrySaturates(t *testing.T) {
	c := dataitem.NewCodec(signers.Standard())
	raw, err := bundle.Build(signedItems(t, c, 2))
	require.NoError(t, err)

	bad := bytes.Clone(raw)
	bad[bundle.CountSize+31] = 0x01 // entry 0 size no longer fits in 64 bits
	bd, err := bundle.ParseHeader(bad)
	require.NoError(t, err)
	_, err = bd.Raw(0)
	require.ErrorIs(t, err, model.ErrDeclaredSizeExceedsBuffer)
	_, err = bd.Raw(1)
	require.ErrorIs(t, err, model.ErrDeclaredSizeExceedsBuffer)
}

func TestConformanceVector_Bundle3(t *testing.T) {
	root := filepath.Join("..", "testdata", "conformance", "ans104")
	raw, err := os.ReadFile(filepath.Join(root, "bundle_3.bin"))
	require.NoError(t, err)
	idsFile, err := os.ReadFile(filepath.Join(root, "bundle_3.ids"))
	require.NoError(t, err)
	want := strings.Fields(string(idsFile))

	bd, err := bundle.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, want, bd.IDStrings())

	c := dataitem.NewCodec(signers.Standard())
	items := make([]*dataitem.Item, bd.Len())
	for k := range items {
		items[k], err = bd.ItemAt(c, k)
		require.NoError(t, err)
		ok, err := c.Verify(items[k])
		require.NoError(t, err)
		require.True(t, ok, "entry %d", k)
	}

	rebuilt, err := bundle.Build(items)
	require.NoError(t, err)
	require.Equal(t, raw, rebuilt)
}
