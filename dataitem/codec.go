package dataitem

import (
	"bytes"
	"encoding/binary"
	"strconv"

	"xdao.co/ans104/deephash"
	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

// Codec binds item operations to a signature registry and tag limits. It holds
// no mutable state and is safe for concurrent use.
type Codec struct {
	Registry *signers.Registry
	Limits   tags.Limits
}

// NewCodec returns a codec using reg and the default tag limits.
func NewCodec(reg *signers.Registry) *Codec {
	return &Codec{Registry: reg, Limits: tags.DefaultLimits}
}

// New returns an unsigned item of signature type t.
func (c *Codec) New(t signers.Type, f Fields) (*Item, error) {
	if _, err := c.Registry.Lookup(t); err != nil {
		return nil, err
	}
	target, err := optionalField(f.Target, model.ErrInvalidTarget, "target")
	if err != nil {
		return nil, err
	}
	anchor, err := optionalField(f.Anchor, model.ErrInvalidAnchor, "anchor")
	if err != nil {
		return nil, err
	}
	raw, err := c.Limits.Encode(f.Tags)
	if err != nil {
		return nil, err
	}
	return &Item{
		sigType: t,
		target:  target,
		anchor:  anchor,
		tags:    append([]tags.Tag{}, f.Tags...),
		rawTags: raw,
		data:    bytes.Clone(f.Data),
	}, nil
}

// SigningMessage returns the deep-hash digest that owner signs for it:
//
//	DeepHash(["dataitem", "1", type, owner, target, anchor, tag block, data])
//
// with absent target/anchor hashed as empty blobs.
func SigningMessage(it *Item, owner []byte) []byte {
	return deephash.SumList(
		deephash.String("dataitem"),
		deephash.String("1"),
		deephash.String(strconv.FormatUint(uint64(it.sigType), 10)),
		deephash.Blob(owner),
		deephash.Blob(it.target),
		deephash.Blob(it.anchor),
		deephash.Blob(it.rawTags),
		deephash.Blob(it.data),
	)
}

// Sign returns a new item carrying the owner derived from privateKey and a
// signature over SigningMessage. Signing an already signed item replaces its
// owner, signature and id together. privateKey is not retained.
func (c *Codec) Sign(it *Item, privateKey []byte) (*Item, error) {
	scheme, err := c.Registry.Lookup(it.sigType)
	if err != nil {
		return nil, err
	}
	owner, err := scheme.PublicKey(privateKey)
	if err != nil {
		return nil, err
	}
	sig, err := scheme.Sign(privateKey, SigningMessage(it, owner))
	if err != nil {
		return nil, err
	}
	return c.Assemble(it, owner, sig)
}

// Assemble attaches an externally produced owner and signature to the fields
// of it. The signature is not checked; use Verify.
func (c *Codec) Assemble(it *Item, owner, signature []byte) (*Item, error) {
	scheme, err := c.Registry.Lookup(it.sigType)
	if err != nil {
		return nil, err
	}
	if len(owner) != scheme.PublicKeyLength() {
		return nil, model.Structural(model.CodeInvalidLength, "%s owner must be %d bytes, got %d", scheme.Name(), scheme.PublicKeyLength(), len(owner))
	}
	if len(signature) != scheme.SignatureLength() {
		return nil, model.Structural(model.CodeInvalidLength, "%s signature must be %d bytes, got %d", scheme.Name(), scheme.SignatureLength(), len(signature))
	}
	raw := encode(it.sigType, signature, owner, it.target, it.anchor, uint64(len(it.tags)), it.rawTags, it.data)
	return c.decode(raw)
}

// Build serializes a signed item from its parts.
func (c *Codec) Build(t signers.Type, f Fields, owner, signature []byte) ([]byte, error) {
	it, err := c.New(t, f)
	if err != nil {
		return nil, err
	}
	signed, err := c.Assemble(it, owner, signature)
	if err != nil {
		return nil, err
	}
	return signed.Bytes()
}

// Parse decodes b into an item. The returned item owns a copy of b.
//
// Every failure is a structural *model.Error: TruncatedItem,
// UnsupportedSignatureScheme, InvalidPresenceByte or MalformedTagBlock.
func (c *Codec) Parse(b []byte) (*Item, error) {
	return c.decode(bytes.Clone(b))
}

// decode parses raw in place; the returned item aliases raw.
func (c *Codec) decode(raw []byte) (*Item, error) {
	r := reader{buf: raw}

	typeBytes, ok := r.next(2)
	if !ok {
		return nil, truncated("signature type", 2, r.remaining())
	}
	t := signers.Type(binary.LittleEndian.Uint16(typeBytes))
	scheme, err := c.Registry.Lookup(t)
	if err != nil {
		return nil, err
	}

	it := &Item{sigType: t, raw: raw}
	if it.signature, ok = r.next(scheme.SignatureLength()); !ok {
		return nil, truncated("signature", scheme.SignatureLength(), r.remaining())
	}
	if it.owner, ok = r.next(scheme.PublicKeyLength()); !ok {
		return nil, truncated("owner", scheme.PublicKeyLength(), r.remaining())
	}
	if it.target, err = r.optional("target"); err != nil {
		return nil, err
	}
	if it.anchor, err = r.optional("anchor"); err != nil {
		return nil, err
	}

	header, ok := r.next(16)
	if !ok {
		return nil, truncated("tag header", 16, r.remaining())
	}
	count := binary.LittleEndian.Uint64(header[:8])
	length := binary.LittleEndian.Uint64(header[8:])
	if length > uint64(r.remaining()) {
		return nil, model.Structural(model.CodeTruncatedItem, "tag block declares %d bytes, %d remain", length, r.remaining())
	}
	it.rawTags, _ = r.next(int(length))
	if it.tags, err = c.Limits.Decode(it.rawTags, count); err != nil {
		return nil, err
	}
	it.data = r.rest()
	if len(it.rawTags) == 0 {
		it.rawTags = nil
	}
	it.id = ComputeID(it.signature)
	return it, nil
}

// Verify checks the item's signature against its owner.
//
// It returns (false, nil) for a well-formed item whose signature does not
// verify, and an error when the item is structurally unusable: unknown
// signature type, wrong field lengths, or no signature at all.
func (c *Codec) Verify(it *Item) (bool, error) {
	if it == nil || !it.IsSigned() {
		return false, errUnsigned()
	}
	scheme, err := c.Registry.Lookup(it.sigType)
	if err != nil {
		return false, err
	}
	if len(it.signature) != scheme.SignatureLength() || len(it.owner) != scheme.PublicKeyLength() {
		return false, model.Structural(model.CodeInvalidLength, "%s item has %d-byte signature and %d-byte owner", scheme.Name(), len(it.signature), len(it.owner))
	}
	if !bytes.Equal(it.id, ComputeID(it.signature)) {
		return false, model.Structural(model.CodeIDMismatch, "id does not match signature")
	}
	return scheme.Verify(it.owner, SigningMessage(it, it.owner), it.signature), nil
}

// OwnerAddress renders the item's owner as a chain-native address.
func (c *Codec) OwnerAddress(it *Item) (string, error) {
	scheme, err := c.Registry.Lookup(it.sigType)
	if err != nil {
		return "", err
	}
	return scheme.Address(it.owner)
}

