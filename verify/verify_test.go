package verify

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

func newVerifier() *Verifier {
	return New(dataitem.NewCodec(signers.Standard()))
}

func signed(t *testing.T, c *dataitem.Codec, typ signers.Type, i int) *dataitem.Item {
	t.Helper()
	it, err := c.New(typ, dataitem.Fields{
		Tags: []tags.Tag{{Name: "Seq", Value: fmt.Sprint(i)}},
		Data: []byte(fmt.Sprintf("payload %d", i)),
	})
	require.NoError(t, err)
	key := keys.FixedSeed(byte(0x20 + i))
	if typ == signers.TypeMultiAptos {
		key = append(key, keys.FixedSeed(byte(0x80+i))...)
	}
	out, err := c.Sign(it, key)
	require.NoError(t, err)
	return out
}

// corruptSignature flips one bit of the signature of entry k in place.
func corruptSignature(t *testing.T, raw []byte, k int) {
	t.Helper()
	bd, err := bundle.Parse(raw)
	require.NoError(t, err)
	off := bd.Entries()[k].Offset + 2
	raw[off] ^= 0x01
}

func TestVerifyBundle_SingleValidItem(t *testing.T) {
	v := newVerifier()
	it := signed(t, v.Codec, signers.TypeED25519, 0)
	raw, err := bundle.Build([]*dataitem.Item{it})
	require.NoError(t, err)

	ids, err := bundle.IDs(raw)
	require.NoError(t, err)
	require.Equal(t, [][]byte{it.ID()}, ids)

	rep := v.VerifyBundle(raw)
	require.True(t, rep.Valid())
	require.Equal(t, 1, rep.Count)
	require.Equal(t, it.IDString(), rep.Entries[0].ID)
}

func TestVerifyBundle_CorruptMiddleItem(t *testing.T) {
	v := newVerifier()
	items := []*dataitem.Item{
		signed(t, v.Codec, signers.TypeED25519, 0),
		signed(t, v.Codec, signers.TypeEthereum, 1),
		signed(t, v.Codec, signers.TypeSolana, 2),
	}
	raw, err := bundle.Build(items)
	require.NoError(t, err)

	// Flip a signature bit and restore the declared id so only the signature is wrong.
	corruptSignature(t, raw, 1)
	bd, err := bundle.Parse(raw)
	require.NoError(t, err)
	rawItem, err := bd.Raw(1)
	require.NoError(t, err)
	parsed, err := v.Codec.Parse(rawItem)
	require.NoError(t, err)
	copy(raw[bundle.CountSize+bundle.EntrySize+32:], parsed.ID())

	rep := v.VerifyBundle(raw)
	require.False(t, rep.Valid())
	require.True(t, rep.Entries[0].Valid)
	require.False(t, rep.Entries[1].Valid)
	require.Equal(t, model.ClassCryptographic, rep.Entries[1].Class)
	require.Equal(t, model.CodeInvalidSignature, rep.Entries[1].Code)
	require.True(t, rep.Entries[2].Valid)
}

func TestVerifyBundle_CorruptWithoutFixingHeaderIsIdentityFailure(t *testing.T) {
	v := newVerifier()
	raw, err := bundle.Build([]*dataitem.Item{
		signed(t, v.Codec, signers.TypeED25519, 0),
		signed(t, v.Codec, signers.TypeED25519, 1),
	})
	require.NoError(t, err)
	corruptSignature(t, raw, 0)

	rep := v.VerifyBundle(raw)
	require.Equal(t, model.ClassIdentity, rep.Entries[0].Class)
	require.Equal(t, model.CodeIDMismatch, rep.Entries[0].Code)
	require.True(t, rep.Entries[1].Valid)
}

func TestVerifyBundle_TruncatedLastByte(t *testing.T) {
	v := newVerifier()
	raw, err := bundle.Build([]*dataitem.Item{
		signed(t, v.Codec, signers.TypeED25519, 0),
		signed(t, v.Codec, signers.TypeCosmos, 1),
	})
	require.NoError(t, err)

	rep := v.VerifyBundle(raw[:len(raw)-1])
	require.Len(t, rep.Entries, 2)
	require.True(t, rep.Entries[0].Valid)
	require.False(t, rep.Entries[1].Valid)
	require.Equal(t, model.ClassStructural, rep.Entries[1].Class)
	require.Equal(t, model.CodeDeclaredSizeExceedsBuffer, rep.Entries[1].Code)
}

func TestVerifyBundle_EveryTruncationIsReported(t *testing.T) {
	v := newVerifier()
	raw, err := bundle.Build([]*dataitem.Item{
		signed(t, v.Codec, signers.TypeED25519, 0),
		signed(t, v.Codec, signers.TypeED25519, 1),
	})
	require.NoError(t, err)

	for n := 0; n < len(raw); n++ {
		rep := v.VerifyBundle(raw[:n])
		require.False(t, rep.Valid(), "prefix %d", n)
		if rep.HeaderError != nil {
			require.Equal(t, model.CodeTruncatedBundleHeader, rep.HeaderError.Code)
		}
	}
}

func TestVerifyBundle_HeaderError(t *testing.T) {
	rep := newVerifier().VerifyBundle([]byte{1, 2, 3})
	require.NotNil(t, rep.HeaderError)
	require.Equal(t, model.CodeTruncatedBundleHeader, rep.HeaderError.Code)
	require.Empty(t, rep.Entries)
	require.False(t, rep.Valid())
}

func TestVerifyBundle_UnknownSchemeIsStructural(t *testing.T) {
	v := newVerifier()
	raw, err := bundle.Build([]*dataitem.Item{signed(t, v.Codec, signers.TypeED25519, 0)})
	require.NoError(t, err)
	raw[bundle.CountSize+bundle.EntrySize] = 0x7f

	rep := v.VerifyBundle(raw)
	require.Equal(t, model.ClassStructural, rep.Entries[0].Class)
	require.Equal(t, model.CodeUnsupportedSignatureScheme, rep.Entries[0].Code)
}

func TestVerifyBundle_ParallelOrderMatchesHeader(t *testing.T) {
	v := newVerifier()
	v.Workers = 4
	var logBuf bytes.Buffer
	v.Logger = zerolog.New(&logBuf).Level(zerolog.DebugLevel)

	schemes := []signers.Type{signers.TypeED25519, signers.TypeEthereum, signers.TypeSolana, signers.TypeInjectedAptos, signers.TypeMultiAptos, signers.TypeTypedEthereum, signers.TypeCosmos}
	items := make([]*dataitem.Item, 3*ParallelThreshold)
	for i := range items {
		items[i] = signed(t, v.Codec, schemes[i%len(schemes)], i)
	}
	raw, err := bundle.Build(items)
	require.NoError(t, err)
	corruptSignature(t, raw, 5)
	corruptSignature(t, raw, 17)

	rep := v.VerifyBundle(raw)
	require.Len(t, rep.Entries, len(items))
	for i, e := range rep.Entries {
		require.Equal(t, i, e.Index)
		require.Equal(t, items[i].IDString(), e.ID)
		if i == 5 || i == 17 {
			require.False(t, e.Valid, "entry %d", i)
			continue
		}
		require.True(t, e.Valid, "entry %d: %s", i, e.Reason)
	}
	require.Len(t, rep.Failed(), 2)
	require.Contains(t, logBuf.String(), `"failed":2`)

	seq := newVerifier()
	seq.Workers = 1
	require.Equal(t, rep, seq.VerifyBundle(raw))
}

func TestVerifyItem(t *testing.T) {
	v := newVerifier()
	it := signed(t, v.Codec, signers.TypeTypedEthereum, 3)
	ok, err := v.VerifyItem(it)
	require.NoError(t, err)
	require.True(t, ok)

	raw, err := it.Bytes()
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	parsed, ok, err := v.VerifyItemBytes(raw)
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.False(t, ok)

	_, _, err = v.VerifyItemBytes(raw[:10])
	require.ErrorIs(t, err, model.ErrTruncatedItem)

	unsigned, err := v.Codec.New(signers.TypeED25519, dataitem.Fields{})
	require.NoError(t, err)
	_, err = v.VerifyItem(unsigned)
	require.ErrorIs(t, err, model.ErrUnsignedItem)
}
