package signers

import (
	"bytes"
	"encoding/hex"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"xdao.co/ans104/keys"
)

// edScheme covers every family that signs with plain ed25519 and differs only
// in how the message is framed and how the owner is rendered as an address.
type edScheme struct {
	typ     Type
	name    string
	aliases []string
	frame   func(message []byte) []byte
	address func(pub []byte) string
}

// NewED25519 returns the generic ed25519 scheme (type 2), also used by Algorand.
func NewED25519() Scheme {
	return &edScheme{typ: TypeED25519, name: "ed25519", aliases: []string{"algorand"}, address: base58Address}
}

// NewSolana returns the Solana scheme (type 4).
func NewSolana() Scheme {
	return &edScheme{typ: TypeSolana, name: "solana", address: base58Address}
}

// NewInjectedAptos returns the single-key Aptos wallet scheme (type 5). Aptos
// wallets sign a framed message rather than the raw digest.
func NewInjectedAptos() Scheme {
	return &edScheme{typ: TypeInjectedAptos, name: "injectedAptos", aliases: []string{"aptos"}, frame: aptosFrame, address: aptosAddress}
}

func (s *edScheme) Type() Type           { return s.typ }
func (s *edScheme) Name() string         { return s.name }
func (s *edScheme) Aliases() []string    { return s.aliases }
func (s *edScheme) PublicKeyLength() int { return ed25519.PublicKeySize }
func (s *edScheme) SignatureLength() int { return ed25519.SignatureSize }

func (s *edScheme) PublicKey(privateKey []byte) ([]byte, error) {
	priv, err := edPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer keys.Wipe(priv)
	return bytes.Clone(priv[ed25519.SeedSize:]), nil
}

func (s *edScheme) Sign(privateKey, message []byte) ([]byte, error) {
	priv, err := edPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer keys.Wipe(priv)
	return ed25519.Sign(priv, s.framed(message)), nil
}

func (s *edScheme) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, s.framed(message), signature)
}

func (s *edScheme) Address(publicKey []byte) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", invalidKey("%s public key must be %d bytes, got %d", s.name, ed25519.PublicKeySize, len(publicKey))
	}
	return s.address(publicKey), nil
}

func (s *edScheme) framed(message []byte) []byte {
	if s.frame == nil {
		return message
	}
	return s.frame(message)
}

// edPrivateKey accepts a 32-byte seed or a 64-byte seed||public key and returns
// a fresh private key the caller must wipe. A 64-byte key whose public half
// does not match its seed is rejected.
func edPrivateKey(b []byte) (ed25519.PrivateKey, error) {
	switch len(b) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(b), nil
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(b[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], b[ed25519.SeedSize:]) {
			keys.Wipe(priv)
			return nil, invalidKey("ed25519 keypair public half does not match seed")
		}
		return priv, nil
	default:
		return nil, invalidKey("ed25519 private key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(b))
	}
}

func aptosFrame(message []byte) []byte {
	out := make([]byte, 0, len(message)+32)
	out = append(out, "APTOS\nmessage: "...)
	out = append(out, message...)
	out = append(out, "\nnonce: bundlr"...)
	return out
}

func base58Address(pub []byte) string {
	return base58.Encode(pub)
}

// aptosAddress is the authentication key of a single ed25519 account:
// sha3-256(pub || 0x00).
func aptosAddress(pub []byte) string {
	h := sha3.New256()
	_, _ = h.Write(pub)
	_, _ = h.Write([]byte{0x00})
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
