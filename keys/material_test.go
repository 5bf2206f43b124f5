package keys

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"
)

func TestParseHex(t *testing.T) {
	for _, in := range []string{"0a0b0c", "0x0a0b0c", "  0X0A0B0C\n"} {
		got, err := ParseHex(in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", in, err)
		}
		if !bytes.Equal(got, []byte{0x0a, 0x0b, 0x0c}) {
			t.Fatalf("ParseHex(%q): got %x", in, got)
		}
	}
	if _, err := ParseHex("0x"); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
	if _, err := ParseHex("zz"); err == nil {
		t.Fatalf("expected non-hex to be rejected")
	}
}

func TestParseFallsBackToBase58(t *testing.T) {
	want := FixedSeed(0x42)
	enc := base58.Encode(want)

	got, err := Parse(enc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Parse base58 mismatch")
	}
	if _, err := ParseBase58("0OIl"); err == nil {
		t.Fatalf("expected invalid base58 alphabet to be rejected")
	}
}

func TestCopyAndWipe(t *testing.T) {
	src := FixedSeed(0x07)
	c := Copy(src)
	Wipe(c)
	if !bytes.Equal(c, make([]byte, SeedSize)) {
		t.Fatalf("expected wiped copy to be zero")
	}
	if src[0] != 0x07 {
		t.Fatalf("expected source to be untouched")
	}
}
