package signers

import (
	"bytes"
	"encoding/hex"

	"github.com/cloudflare/circl/sign/ed25519"
	"golang.org/x/crypto/sha3"

	"xdao.co/ans104/keys"
)

const (
	multiAptosSlots     = 32
	multiAptosBitmapLen = 4
	multiAptosSigLen    = multiAptosSlots*ed25519.SignatureSize + multiAptosBitmapLen
	multiAptosPubLen    = multiAptosSlots*ed25519.PublicKeySize + 1
)

// multiAptos is an Aptos multi-ed25519 account: up to 32 key slots and a
// threshold. The signature holds one 64-byte slot per key and a big-endian
// bitmap whose bit i (MSB first) marks slot i as present.
type multiAptos struct{}

// NewMultiAptos returns the Aptos multi-ed25519 scheme (type 6).
//
// Signing takes the concatenation of 1 to 32 ed25519 seeds; every key signs and
// the threshold is the number of keys.
func NewMultiAptos() Scheme { return multiAptos{} }

func (multiAptos) Type() Type           { return TypeMultiAptos }
func (multiAptos) Name() string         { return "multiAptos" }
func (multiAptos) PublicKeyLength() int { return multiAptosPubLen }
func (multiAptos) SignatureLength() int { return multiAptosSigLen }

func (m multiAptos) PublicKey(privateKey []byte) ([]byte, error) {
	seeds, err := multiAptosSeeds(privateKey)
	if err != nil {
		return nil, err
	}
	owner := make([]byte, multiAptosPubLen)
	for i, seed := range seeds {
		priv := ed25519.NewKeyFromSeed(seed)
		copy(owner[i*ed25519.PublicKeySize:], priv[ed25519.SeedSize:])
		keys.Wipe(priv)
	}
	owner[multiAptosPubLen-1] = byte(len(seeds))
	return owner, nil
}

func (m multiAptos) Sign(privateKey, message []byte) ([]byte, error) {
	seeds, err := multiAptosSeeds(privateKey)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, multiAptosSigLen)
	bitmap := sig[multiAptosSlots*ed25519.SignatureSize:]
	for i, seed := range seeds {
		priv := ed25519.NewKeyFromSeed(seed)
		copy(sig[i*ed25519.SignatureSize:], ed25519.Sign(priv, message))
		keys.Wipe(priv)
		bitmap[i/8] |= 128 >> (i % 8)
	}
	return sig, nil
}

// Verify requires every slot marked in the bitmap to verify against the key in
// the same slot, and at least threshold slots to be marked.
func (multiAptos) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != multiAptosPubLen || len(signature) != multiAptosSigLen {
		return false
	}
	threshold := int(publicKey[multiAptosPubLen-1])
	if threshold == 0 || threshold > multiAptosSlots {
		return false
	}
	bitmap := signature[multiAptosSlots*ed25519.SignatureSize:]
	present := 0
	for i := 0; i < multiAptosSlots; i++ {
		if bitmap[i/8]&(128>>(i%8)) == 0 {
			continue
		}
		pub := publicKey[i*ed25519.PublicKeySize : (i+1)*ed25519.PublicKeySize]
		sig := signature[i*ed25519.SignatureSize : (i+1)*ed25519.SignatureSize]
		if !ed25519.Verify(pub, message, sig) {
			return false
		}
		present++
	}
	return present >= threshold
}

// Address is the multi-ed25519 authentication key:
// sha3-256(pk_0 || ... || pk_n-1 || threshold || 0x01), counting keys up to
// the last non-empty slot.
func (multiAptos) Address(publicKey []byte) (string, error) {
	if len(publicKey) != multiAptosPubLen {
		return "", invalidKey("multiAptos public key must be %d bytes, got %d", multiAptosPubLen, len(publicKey))
	}
	empty := make([]byte, ed25519.PublicKeySize)
	n := 0
	for i := 0; i < multiAptosSlots; i++ {
		if !bytes.Equal(publicKey[i*ed25519.PublicKeySize:(i+1)*ed25519.PublicKeySize], empty) {
			n = i + 1
		}
	}
	h := sha3.New256()
	_, _ = h.Write(publicKey[:n*ed25519.PublicKeySize])
	_, _ = h.Write([]byte{publicKey[multiAptosPubLen-1], 0x01})
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

func multiAptosSeeds(b []byte) ([][]byte, error) {
	if len(b) == 0 || len(b)%ed25519.SeedSize != 0 || len(b)/ed25519.SeedSize > multiAptosSlots {
		return nil, invalidKey("multiAptos key must be 1 to %d concatenated %d-byte seeds, got %d bytes", multiAptosSlots, ed25519.SeedSize, len(b))
	}
	out := make([][]byte, 0, len(b)/ed25519.SeedSize)
	for off := 0; off < len(b); off += ed25519.SeedSize {
		out = append(out, b[off:off+ed25519.SeedSize])
	}
	return out, nil
}
