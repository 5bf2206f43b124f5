// Package dataitem builds, parses, signs and verifies signed data items.
//
// Layout (integers little-endian):
//
//	u16 signature type
//	signature        (scheme signature length)
//	owner            (scheme public key length)
//	u8 target flag   (0 or 1), then 32 bytes when 1
//	u8 anchor flag   (0 or 1), then 32 bytes when 1
//	u64 tag count
//	u64 tag block length
//	tag block        (see package tags)
//	data             (everything that remains)
//
// An Item is immutable. Signing returns a new Item; the id is always
// sha256(signature) and cannot be set independently.
package dataitem

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"

	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

const (
	// FieldSize is the fixed length of a present target or anchor.
	FieldSize = 32
	// IDSize is the length of an item id.
	IDSize = sha256.Size
)

// Fields are the caller-supplied parts of an item.
//
// Target and Anchor are optional; nil or empty means absent, otherwise they
// must be exactly FieldSize bytes.
type Fields struct {
	Target []byte
	Anchor []byte
	Tags   []tags.Tag
	Data   []byte
}

// Item is one data item. The zero value is not usable; obtain items from
// Codec.New, Codec.Sign, Codec.Assemble or Codec.Parse.
type Item struct {
	sigType   signers.Type
	signature []byte
	owner     []byte
	target    []byte
	anchor    []byte
	tags      []tags.Tag
	rawTags   []byte
	data      []byte

	raw []byte
	id  []byte
}

func (it *Item) SignatureType() signers.Type { return it.sigType }
func (it *Item) Signature() []byte           { return bytes.Clone(it.signature) }
func (it *Item) Owner() []byte               { return bytes.Clone(it.owner) }
func (it *Item) Target() []byte              { return bytes.Clone(it.target) }
func (it *Item) Anchor() []byte              { return bytes.Clone(it.anchor) }
func (it *Item) RawTags() []byte             { return bytes.Clone(it.rawTags) }
func (it *Item) Data() []byte                { return bytes.Clone(it.data) }
func (it *Item) HasTarget() bool             { return len(it.target) != 0 }
func (it *Item) HasAnchor() bool             { return len(it.anchor) != 0 }

// Tags returns a copy of the item's tags in order.
func (it *Item) Tags() []tags.Tag {
	return append([]tags.Tag(nil), it.tags...)
}

// Fields returns a copy of the caller-supplied parts of the item.
func (it *Item) Fields() Fields {
	return Fields{Target: it.Target(), Anchor: it.Anchor(), Tags: it.Tags(), Data: it.Data()}
}

// IsSigned reports whether the item carries a signature.
func (it *Item) IsSigned() bool { return len(it.signature) != 0 }

// ID returns sha256(signature), or nil for an unsigned item.
func (it *Item) ID() []byte { return bytes.Clone(it.id) }

// IDString returns the unpadded base64url form of ID, or "" when unsigned.
func (it *Item) IDString() string {
	if it.id == nil {
		return ""
	}
	return EncodeID(it.id)
}

// Bytes returns the serialized item. Unsigned items have no serialization.
func (it *Item) Bytes() ([]byte, error) {
	if !it.IsSigned() {
		return nil, errUnsigned()
	}
	return bytes.Clone(it.raw), nil
}

// Size returns the serialized length, or 0 for an unsigned item.
func (it *Item) Size() int { return len(it.raw) }

// Equal reports whether a and b have identical fields.
func (it *Item) Equal(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.sigType == other.sigType &&
		bytes.Equal(it.signature, other.signature) &&
		bytes.Equal(it.owner, other.owner) &&
		bytes.Equal(it.target, other.target) &&
		bytes.Equal(it.anchor, other.anchor) &&
		bytes.Equal(it.rawTags, other.rawTags) &&
		tags.Equal(it.tags, other.tags) &&
		bytes.Equal(it.data, other.data)
}

// EncodeID renders an id as unpadded base64url.
func EncodeID(id []byte) string {
	return base64.RawURLEncoding.EncodeToString(id)
}

// DecodeID parses the unpadded base64url form of an id.
func DecodeID(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != IDSize {
		return nil, errIDLength(len(b))
	}
	return b, nil
}

// ComputeID returns sha256(signature).
func ComputeID(signature []byte) []byte {
	sum := sha256.Sum256(signature)
	return sum[:]
}
