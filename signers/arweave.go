package signers

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"io"
	"math/big"

	"xdao.co/ans104/keys"
)

const (
	arweaveModulusLen = 512
	arweaveExponent   = 65537
)

// Arweave signs with RSA-PSS over SHA-256 using a 4096-bit key whose public
// exponent is fixed at 65537. The owner is the big-endian modulus. Signatures
// carry a random salt, so signing is not deterministic.
type Arweave struct {
	// Rand is the salt source. Nil means crypto/rand.
	Rand io.Reader
}

// NewArweave returns the Arweave scheme (type 1).
func NewArweave() Scheme { return &Arweave{} }

func (a *Arweave) Type() Type           { return TypeArweave }
func (a *Arweave) Name() string         { return "arweave" }
func (a *Arweave) PublicKeyLength() int { return arweaveModulusLen }
func (a *Arweave) SignatureLength() int { return arweaveModulusLen }

// PublicKey accepts a PKCS#1 or PKCS#8 DER encoded RSA private key.
func (a *Arweave) PublicKey(privateKey []byte) ([]byte, error) {
	key, err := parseArweaveKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeRSA(key)
	return key.N.FillBytes(make([]byte, arweaveModulusLen)), nil
}

func (a *Arweave) Sign(privateKey, message []byte) ([]byte, error) {
	key, err := parseArweaveKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeRSA(key)

	r := a.Rand
	if r == nil {
		r = rand.Reader
	}
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPSS(r, key, crypto.SHA256, digest[:], &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
	if err != nil {
		return nil, signingFailed(err, "arweave sign")
	}
	return sig, nil
}

func (a *Arweave) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != arweaveModulusLen || len(signature) != arweaveModulusLen {
		return false
	}
	pub := &rsa.PublicKey{N: new(big.Int).SetBytes(publicKey), E: arweaveExponent}
	digest := sha256.Sum256(message)
	return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto}) == nil
}

// Address is base64url(sha256(modulus)), the Arweave wallet address.
func (a *Arweave) Address(publicKey []byte) (string, error) {
	if len(publicKey) != arweaveModulusLen {
		return "", invalidKey("arweave owner must be %d bytes, got %d", arweaveModulusLen, len(publicKey))
	}
	sum := sha256.Sum256(publicKey)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

func parseArweaveKey(der []byte) (*rsa.PrivateKey, error) {
	buf := keys.Copy(der)
	defer keys.Wipe(buf)

	key, err := x509.ParsePKCS1PrivateKey(buf)
	if err != nil {
		parsed, err8 := x509.ParsePKCS8PrivateKey(buf)
		if err8 != nil {
			return nil, invalidKey("arweave key is neither PKCS#1 nor PKCS#8 DER")
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, invalidKey("arweave key is %T, not RSA", parsed)
		}
		key = rsaKey
	}
	if key.N.BitLen() != arweaveModulusLen*8 {
		wipeRSA(key)
		return nil, invalidKey("arweave key must be %d bits, got %d", arweaveModulusLen*8, key.N.BitLen())
	}
	if key.E != arweaveExponent {
		wipeRSA(key)
		return nil, invalidKey("arweave key exponent must be %d, got %d", arweaveExponent, key.E)
	}
	return key, nil
}

func wipeRSA(key *rsa.PrivateKey) {
	if key == nil {
		return
	}
	if key.D != nil {
		key.D.SetInt64(0)
	}
	for _, p := range key.Primes {
		p.SetInt64(0)
	}
}
