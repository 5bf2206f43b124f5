package signers

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos addresses are defined over ripemd160

	"xdao.co/ans104/keys"
)

const (
	recoverableSigLen   = 65
	compactSigLen       = 64
	uncompressedPubLen  = 65
	compressedPubLen    = 33
	typedEthereumPubLen = 42
)

// ethereum signs the EIP-191 personal message hash of the deep-hash digest with
// a recoverable signature (r || s || v, v in {27, 28}). The owner is the
// uncompressed public key.
type ethereum struct{}

// NewEthereum returns the Ethereum scheme (type 3). EVM chains share it.
func NewEthereum() Scheme { return ethereum{} }

func (ethereum) Type() Type           { return TypeEthereum }
func (ethereum) Name() string         { return "ethereum" }
func (ethereum) Aliases() []string    { return []string{"matic", "polygon", "bnb", "avalanche", "arbitrum", "fantom", "boba"} }
func (ethereum) PublicKeyLength() int { return uncompressedPubLen }
func (ethereum) SignatureLength() int { return recoverableSigLen }

func (ethereum) PublicKey(privateKey []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	return ethcrypto.FromECDSAPub(&key.PublicKey), nil
}

func (ethereum) Sign(privateKey, message []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	return signRecoverable(accounts.TextHash(message), key)
}

func (ethereum) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != uncompressedPubLen || len(signature) != recoverableSigLen {
		return false
	}
	pub, err := ethcrypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return false
	}
	got, ok := recoverAddress(accounts.TextHash(message), signature)
	return ok && got == ethcrypto.PubkeyToAddress(*pub)
}

// Address is the EIP-55 checksummed account address.
func (ethereum) Address(publicKey []byte) (string, error) {
	pub, err := ethcrypto.UnmarshalPubkey(publicKey)
	if err != nil {
		return "", invalidKey("ethereum owner is not an uncompressed secp256k1 key: %v", err)
	}
	return ethcrypto.PubkeyToAddress(*pub).Hex(), nil
}

// typedEthereum signs an EIP-712 typed-data hash whose message carries the
// deep-hash digest and the signer address. The owner is the lowercase
// 0x-prefixed address as ASCII, since the public key is not needed to verify a
// recoverable signature.
type typedEthereum struct{}

// NewTypedEthereum returns the EIP-712 Ethereum scheme (type 7).
func NewTypedEthereum() Scheme { return typedEthereum{} }

func (typedEthereum) Type() Type           { return TypeTypedEthereum }
func (typedEthereum) Name() string         { return "typedEthereum" }
func (typedEthereum) PublicKeyLength() int { return typedEthereumPubLen }
func (typedEthereum) SignatureLength() int { return recoverableSigLen }

func (typedEthereum) PublicKey(privateKey []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	return []byte(strings.ToLower(ethcrypto.PubkeyToAddress(key.PublicKey).Hex())), nil
}

func (typedEthereum) Sign(privateKey, message []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	hash, err := typedDataHash(message, ethcrypto.PubkeyToAddress(key.PublicKey))
	if err != nil {
		return nil, signingFailed(err, "typed data hash")
	}
	return signRecoverable(hash, key)
}

func (typedEthereum) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != typedEthereumPubLen || len(signature) != recoverableSigLen {
		return false
	}
	if !common.IsHexAddress(string(publicKey)) {
		return false
	}
	owner := common.HexToAddress(string(publicKey))
	hash, err := typedDataHash(message, owner)
	if err != nil {
		return false
	}
	got, ok := recoverAddress(hash, signature)
	return ok && got == owner
}

func (typedEthereum) Address(publicKey []byte) (string, error) {
	if len(publicKey) != typedEthereumPubLen || !common.IsHexAddress(string(publicKey)) {
		return "", invalidKey("typedEthereum owner must be a %d-byte 0x address", typedEthereumPubLen)
	}
	return common.HexToAddress(string(publicKey)).Hex(), nil
}

// typedDataHash builds the EIP-712 digest the bundling network's wallets sign:
// primary type Bundlr{bytes "Transaction hash", address address} in domain
// {name: "Bundlr", version: "1"}.
func typedDataHash(message []byte, signer common.Address) ([]byte, error) {
	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
			},
			"Bundlr": {
				{Name: "Transaction hash", Type: "bytes"},
				{Name: "address", Type: "address"},
			},
		},
		PrimaryType: "Bundlr",
		Domain: apitypes.TypedDataDomain{
			Name:    "Bundlr",
			Version: "1",
		},
		Message: apitypes.TypedDataMessage{
			"Transaction hash": message,
			"address":          strings.ToLower(signer.Hex()),
		},
	}
	hash, _, err := apitypes.TypedDataAndHash(td)
	return hash, err
}

// cosmos signs sha256(message) with a compact 64-byte low-S secp256k1
// signature. The owner is the compressed public key.
type cosmos struct{}

// NewCosmos returns the Cosmos scheme (type 8).
func NewCosmos() Scheme { return cosmos{} }

func (cosmos) Type() Type           { return TypeCosmos }
func (cosmos) Name() string         { return "cosmos" }
func (cosmos) PublicKeyLength() int { return compressedPubLen }
func (cosmos) SignatureLength() int { return compactSigLen }

func (cosmos) PublicKey(privateKey []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	return ethcrypto.CompressPubkey(&key.PublicKey), nil
}

func (cosmos) Sign(privateKey, message []byte) ([]byte, error) {
	key, err := secpPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipeECDSA(key)
	digest := sha256.Sum256(message)
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return nil, signingFailed(err, "cosmos sign")
	}
	return sig[:compactSigLen], nil
}

func (cosmos) Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != compressedPubLen || len(signature) != compactSigLen {
		return false
	}
	if _, err := ethcrypto.DecompressPubkey(publicKey); err != nil {
		return false
	}
	digest := sha256.Sum256(message)
	return ethcrypto.VerifySignature(publicKey, digest[:], signature)
}

// Address is the uppercase hex of ripemd160(sha256(compressed key)), the
// account address before bech32 encoding.
func (cosmos) Address(publicKey []byte) (string, error) {
	if _, err := ethcrypto.DecompressPubkey(publicKey); err != nil {
		return "", invalidKey("cosmos owner is not a compressed secp256k1 key: %v", err)
	}
	sum := sha256.Sum256(publicKey)
	h := ripemd160.New()
	_, _ = h.Write(sum[:])
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

func secpPrivateKey(b []byte) (*ecdsa.PrivateKey, error) {
	if len(b) != 32 {
		return nil, invalidKey("secp256k1 private key must be 32 bytes, got %d", len(b))
	}
	buf := keys.Copy(b)
	defer keys.Wipe(buf)
	key, err := ethcrypto.ToECDSA(buf)
	if err != nil {
		return nil, invalidKey("invalid secp256k1 private key: %v", err)
	}
	return key, nil
}

func wipeECDSA(key *ecdsa.PrivateKey) {
	if key != nil && key.D != nil {
		key.D.SetInt64(0)
	}
}

func signRecoverable(hash []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := ethcrypto.Sign(hash, key)
	if err != nil {
		return nil, signingFailed(err, "secp256k1 sign")
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}

func recoverAddress(hash, signature []byte) (common.Address, bool) {
	sig := make([]byte, recoverableSigLen)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return common.Address{}, false
	}
	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, false
	}
	return ethcrypto.PubkeyToAddress(*pub), true
}
