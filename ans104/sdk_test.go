package ans104

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

func vector(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "testdata", "conformance", "ans104", name))
	require.NoError(t, err)
	return b
}

func TestSignItem_ReproducesConformanceVector(t *testing.T) {
	sdk := Default()
	target := make([]byte, 32)
	for i := range target {
		target[i] = byte(i)
	}
	out, err := sdk.SignItem(dataitem.Fields{
		Target: target,
		Anchor: []byte("0123456789abcdef0123456789abcdef"),
		Tags: []tags.Tag{
			{Name: "Content-Type", Value: "text/plain"},
			{Name: "App-Name", Value: "ans104-conformance"},
		},
		Data: []byte("hello bundle"),
	}, "ed25519", keys.FixedSeed(0xA2))
	require.NoError(t, err)
	require.Equal(t, vector(t, "ed25519_item_2.bin"), out)
	require.NoError(t, sdk.VerifyItem(out))
}

func TestSignItem_SelectorByNumberAndAlias(t *testing.T) {
	sdk := Default()
	f := dataitem.Fields{Data: []byte("x")}
	key := keys.FixedSeed(0x11)

	byName, err := sdk.SignItem(f, "polygon", key)
	require.NoError(t, err)
	byType, err := sdk.SignItem(f, "3", key)
	require.NoError(t, err)
	require.Equal(t, byName, byType)
	require.NoError(t, sdk.VerifyItem(byName))

	_, err = sdk.SignItem(f, "dogecoin", key)
	require.ErrorIs(t, err, model.ErrUnsupportedSignatureScheme)
	require.True(t, model.IsKind(err, model.KindPolicy))

	_, err = sdk.SignItem(f, "99", key)
	require.ErrorIs(t, err, model.ErrUnsupportedSignatureScheme)
	require.True(t, model.IsKind(err, model.KindPolicy))
}

func TestSignItem_PolicyErrors(t *testing.T) {
	sdk := Default()
	key := keys.FixedSeed(0x12)

	_, err := sdk.SignItem(dataitem.Fields{Target: []byte{1, 2, 3}}, "ed25519", key)
	require.ErrorIs(t, err, model.ErrInvalidTarget)

	_, err = sdk.SignItem(dataitem.Fields{}, "ed25519", []byte{1, 2, 3})
	require.ErrorIs(t, err, model.ErrInvalidKey)
}

func TestVerifyItem_ClassifiesFailures(t *testing.T) {
	sdk := Default()
	raw := vector(t, "ed25519_item_1.bin")
	require.NoError(t, sdk.VerifyItem(raw))

	bad := bytes.Clone(raw)
	bad[2] ^= 0x01
	err := sdk.VerifyItem(bad)
	// Flipping the signature also changes the id, which is recomputed on
	// parse; the item is well formed and fails cryptographically.
	require.ErrorIs(t, err, model.ErrInvalidSignature)
	require.Equal(t, model.KindCrypto, model.KindOf(err))

	err = sdk.VerifyItem(raw[:40])
	require.ErrorIs(t, err, model.ErrTruncatedItem)
	require.Equal(t, model.KindStructural, model.KindOf(err))
}

func TestBuildVerifyAndListBundle(t *testing.T) {
	sdk := Default()
	items := [][]byte{vector(t, "ed25519_item_1.bin"), vector(t, "ed25519_item_2.bin")}

	raw, err := sdk.BuildBundle(items)
	require.NoError(t, err)

	ids, err := sdk.BundleIDs(raw)
	require.NoError(t, err)
	require.Equal(t, []string{
		strings.TrimSpace(string(vector(t, "ed25519_item_1.id"))),
		strings.TrimSpace(string(vector(t, "ed25519_item_2.id"))),
	}, ids)

	rep := sdk.VerifyBundle(raw)
	require.True(t, rep.Valid())
	require.Equal(t, ids, rep.ValidIDs())
}

func TestBundleIDs_ConformanceVector(t *testing.T) {
	sdk := Default()
	ids, err := sdk.BundleIDs(vector(t, "bundle_3.bin"))
	require.NoError(t, err)
	want := strings.Fields(string(vector(t, "bundle_3.ids")))
	require.Equal(t, want, ids)

	rep := sdk.VerifyBundle(vector(t, "bundle_3.bin"))
	require.True(t, rep.Valid())
	require.Equal(t, 3, rep.Count)
}

func TestBuildBundle_ReportsBadIndex(t *testing.T) {
	sdk := Default()
	_, err := sdk.BuildBundle([][]byte{vector(t, "ed25519_item_1.bin"), {0x02}})
	require.Error(t, err)
	require.ErrorIs(t, err, model.ErrTruncatedItem)
	require.Contains(t, err.Error(), "item 1")
}

func TestBundleIDs_TruncatedHeader(t *testing.T) {
	_, err := Default().BundleIDs(make([]byte, 10))
	require.ErrorIs(t, err, model.ErrTruncatedBundleHeader)
}

func TestNew_OptionsApplied(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	reg, err := signers.NewRegistry(signers.NewED25519())
	require.NoError(t, err)

	sdk, err := New(Options{
		Config:   Config{MaxTags: 1, Workers: 2},
		Registry: reg,
		Logger:   &logger,
	})
	require.NoError(t, err)
	require.Equal(t, 2, sdk.Verifier().Workers)
	require.Equal(t, 1, sdk.Codec().Limits.MaxTags)
	require.Equal(t, tags.DefaultLimits.MaxValueBytes, sdk.Codec().Limits.MaxValueBytes)

	_, err = sdk.SignItem(dataitem.Fields{}, "solana", keys.FixedSeed(1))
	require.ErrorIs(t, err, model.ErrUnsupportedSignatureScheme)

	_, err = sdk.SignItem(dataitem.Fields{Tags: []tags.Tag{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}}, "ed25519", keys.FixedSeed(1))
	require.ErrorIs(t, err, model.ErrInvalidTags)

	sdk.VerifyBundle(make([]byte, 5))
	require.Contains(t, buf.String(), `"component":"ans104"`)

	_, err = New(Options{Config: Config{Workers: -1}})
	require.Error(t, err)
}

func TestVerifyItem_UnsignedIsNotCrypto(t *testing.T) {
	sdk := Default()
	it, err := sdk.Codec().New(signers.TypeED25519, dataitem.Fields{})
	require.NoError(t, err)
	_, err = it.Bytes()
	require.True(t, errors.Is(err, model.ErrUnsignedItem))
}
