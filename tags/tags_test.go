package tags

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"xdao.co/ans104/model"
)

func TestEncode_KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		tags []Tag
		want string
	}{
		{"empty", nil, ""},
		{"single", []Tag{{Name: "name", Value: "value"}}, "02086e616d650a76616c756500"},
		{
			"two",
			[]Tag{{Name: "Content-Type", Value: "text/plain"}, {Name: "App-Name", Value: "ans104-conformance"}},
			"0418436f6e74656e742d5479706514746578742f706c61696e104170702d4e616d6524616e733130342d636f6e666f726d616e636500",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.tags)
			require.NoError(t, err)
			require.Equal(t, tc.want, hex.EncodeToString(got))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	lists := [][]Tag{
		{},
		{{Name: "a", Value: ""}},
		{{Name: "dup", Value: "1"}, {Name: "dup", Value: "2"}, {Name: "dup", Value: "1"}},
		{{Name: "unicode", Value: "héllo wörld ✓"}},
		{{Name: strings.Repeat("n", 1024), Value: strings.Repeat("v", 3072)}},
	}
	for _, in := range lists {
		block, err := Encode(in)
		require.NoError(t, err)
		out, err := Decode(block, uint64(len(in)))
		require.NoError(t, err)
		require.True(t, Equal(in, out), "round trip mismatch: %v vs %v", in, out)
	}
}

func TestRoundTrip_ManyTagsUsesMultiByteCount(t *testing.T) {
	in := make([]Tag, 100)
	for i := range in {
		in[i] = Tag{Name: "k", Value: strings.Repeat("x", i)}
	}
	block, err := Encode(in)
	require.NoError(t, err)
	require.Equal(t, byte(0xc8), block[0])
	require.Equal(t, byte(0x01), block[1])

	out, err := Decode(block, 100)
	require.NoError(t, err)
	require.True(t, Equal(in, out))
}

func TestDecode_Malformed(t *testing.T) {
	good, err := Encode([]Tag{{Name: "name", Value: "value"}})
	require.NoError(t, err)

	cases := []struct {
		name  string
		block []byte
		count uint64
	}{
		{"count mismatch", good, 2},
		{"zero count with bytes", good, 0},
		{"bytes missing", nil, 1},
		{"truncated", good[:len(good)-3], 1},
		{"trailing", append(append([]byte(nil), good...), 0x00), 1},
		{"huge block count", []byte{0xfe, 0xff, 0xff, 0xff, 0x0f, 0x00}, 1},
		{"over tag limit", good, 129},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.block, tc.count)
			require.Error(t, err)
			require.True(t, errors.Is(err, model.ErrMalformedTagBlock), "got %v", err)
			require.True(t, model.IsKind(err, model.KindStructural))
		})
	}
}

func TestDecode_NameLongerThanLimit(t *testing.T) {
	loose := Limits{MaxTags: 10, MaxNameBytes: 4096, MaxValueBytes: 4096}
	block, err := loose.Encode([]Tag{{Name: strings.Repeat("n", 2000), Value: "v"}})
	require.NoError(t, err)

	_, err = Decode(block, 1)
	require.ErrorIs(t, err, model.ErrMalformedTagBlock)

	out, err := loose.Decode(block, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestEncode_RejectsOutOfBounds(t *testing.T) {
	tooMany := make([]Tag, 129)
	for i := range tooMany {
		tooMany[i] = Tag{Name: "n", Value: "v"}
	}
	cases := map[string][]Tag{
		"too many":   tooMany,
		"empty name": {{Name: "", Value: "v"}},
		"long value": {{Name: "n", Value: strings.Repeat("v", 3073)}},
		"bad utf8":   {{Name: "n", Value: string([]byte{0xff, 0xfe})}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(in)
			require.ErrorIs(t, err, model.ErrInvalidTags)
			require.True(t, model.IsKind(err, model.KindPolicy))
		})
	}
}
