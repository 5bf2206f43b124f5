package deephash

import (
	"encoding/hex"
	"testing"
)

func TestSum_KnownVectors(t *testing.T) {
	cases := []struct {
		name  string
		chunk Chunk
		want  string
	}{
		{"empty blob", Blob(nil), "fbf00cc444f5fea9dc3bedf62a13fba8ae87e7445fc910567a23bec4eb82fadb1143c433069314d8362983dc3c2e4a38"},
		{"hello blob", String("hello"), "33ab2407a6c328c0bc1bbe5971f49af5c1908985f83c3d2bd89a9e221dd8b068dc61ce968ba3f9ab12d5361ba3944382"},
		{"empty list", List(), "a69e7d37fdc7f040a9ec16aae84de24fab4a653dac4de0bd247e36bab9fe45d9289c5a04a893c95285812f5cefc9707a"},
		{"nested list", List(String("a"), List(String("b"), String("c")), Blob(nil)), "041610a481af67a00b33e0e2197bf20e92747db97a47197e2181648ea1f571d7d11537859258d953eebf88a170abccb0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := hex.EncodeToString(Sum(tc.chunk))
			if got != tc.want {
				t.Fatalf("digest mismatch:\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestSum_OrderSensitive(t *testing.T) {
	a := SumList(String("x"), String("y"))
	b := SumList(String("y"), String("x"))
	if hex.EncodeToString(a) == hex.EncodeToString(b) {
		t.Fatalf("expected reordered list to hash differently")
	}
}

func TestSum_BoundarySensitive(t *testing.T) {
	a := SumList(String("ab"), String("c"))
	b := SumList(String("a"), String("bc"))
	if hex.EncodeToString(a) == hex.EncodeToString(b) {
		t.Fatalf("expected shifted field boundary to hash differently")
	}
	if hex.EncodeToString(Sum(List(String("a")))) == hex.EncodeToString(Sum(String("a"))) {
		t.Fatalf("expected list and blob to hash differently")
	}
}

func TestSum_Size(t *testing.T) {
	if got := len(Sum(Blob([]byte{1, 2, 3}))); got != Size {
		t.Fatalf("digest length: got %d want %d", got, Size)
	}
}
