package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// SeedSize is the length of a derived seed. It is a valid ed25519 seed and a
// valid secp256k1 scalar with overwhelming probability.
const SeedSize = 32

// CheckLabel validates a derivation label.
func CheckLabel(label string) error {
	if label == "" {
		return errors.New("label cannot be empty")
	}
	for _, char := range label {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' || char == '/' {
			continue
		}
		return fmt.Errorf("invalid character %q in label", char)
	}
	return nil
}

// DeriveSeed deterministically derives a label-specific seed from a root seed.
//
// The same root and label always yield the same seed; different labels yield
// unrelated seeds. Used to give every signer in a fixture set its own key.
func DeriveSeed(rootSeed []byte, label string) ([]byte, error) {
	if len(rootSeed) != SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", SeedSize)
	}
	if err := CheckLabel(label); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("ans104-seed-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("label:"))
	_, _ = h.Write([]byte(label))
	return h.Sum(nil), nil
}

// FixedSeed returns a seed with every byte set to b.
func FixedSeed(b byte) []byte {
	out := make([]byte, SeedSize)
	for i := range out {
		out[i] = b
	}
	return out
}
