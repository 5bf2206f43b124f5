package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ParseHex decodes hex key material, accepting an optional 0x prefix and
// surrounding whitespace.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty key")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	return b, nil
}

// ParseBase58 decodes base58 key material as exported by Solana and Aptos
// wallets (typically a 64-byte seed||public key).
func ParseBase58(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty key")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 key: %w", err)
	}
	return b, nil
}

// Parse decodes key material, trying hex first and then base58.
func Parse(s string) ([]byte, error) {
	if b, err := ParseHex(s); err == nil {
		return b, nil
	}
	return ParseBase58(s)
}

// Copy returns a private copy of b that the caller must Wipe.
func Copy(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	clear(b)
}
