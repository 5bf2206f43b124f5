// Package bundle packs signed data items into a single self-indexing buffer
// and reads them back without decoding every item.
//
// Layout: a 32-byte little-endian item count, then one 64-byte entry per item
// (32-byte little-endian size, 32-byte id), then the items concatenated in
// entry order. The offset of entry i is the header size plus the declared
// sizes of entries 0..i-1.
package bundle

import (
	"bytes"
	"encoding/binary"
	"math"

	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/model"
)

const (
	// CountSize is the width of the item count.
	CountSize = 32
	// EntrySize is the width of one header entry.
	EntrySize = 64
	sizeWidth = 32
)

// Entry is one row of the header table.
type Entry struct {
	Index  int
	ID     []byte
	Size   uint64
	Offset uint64
}

// IDString returns the unpadded base64url form of the declared id.
func (e Entry) IDString() string { return dataitem.EncodeID(e.ID) }

// End returns Offset+Size, saturating at math.MaxUint64.
func (e Entry) End() uint64 {
	if e.Size > math.MaxUint64-e.Offset {
		return math.MaxUint64
	}
	return e.Offset + e.Size
}

// Bundle is an indexed, immutable view over a bundle buffer it owns.
type Bundle struct {
	raw     []byte
	entries []Entry
}

// Build serializes items into a bundle in argument order. Every item must be
// signed; otherwise UnsignedItemInBundle is returned and nothing is produced.
func Build(items []*dataitem.Item) ([]byte, error) {
	bodies := make([][]byte, len(items))
	ids := make([][]byte, len(items))
	for i, it := range items {
		if it == nil || !it.IsSigned() {
			return nil, model.Policy(model.CodeUnsignedItemInBundle, "item %d is not signed", i)
		}
		b, err := it.Bytes()
		if err != nil {
			return nil, err
		}
		bodies[i] = b
		ids[i] = it.ID()
	}
	return assemble(ids, bodies), nil
}

func assemble(ids, bodies [][]byte) []byte {
	total := CountSize + EntrySize*len(bodies)
	for _, b := range bodies {
		total += len(b)
	}
	out := make([]byte, 0, total)
	out = appendU256(out, uint64(len(bodies)))
	for i, b := range bodies {
		out = appendU256(out, uint64(len(b)))
		out = append(out, ids[i]...)
	}
	for _, b := range bodies {
		out = append(out, b...)
	}
	return out
}

// ParseHeader reads the count and entry table of b without touching item
// bodies. Declared sizes are not checked against the buffer; Raw and ItemAt
// report per-entry range errors instead. The only failure is a header that
// is itself truncated or unrepresentable.
func ParseHeader(b []byte) (*Bundle, error) {
	if len(b) < CountSize {
		return nil, model.Structural(model.CodeTruncatedBundleHeader, "need %d bytes for item count, have %d", CountSize, len(b))
	}
	count, ok := readU256(b[:CountSize])
	maxEntries := uint64(len(b)-CountSize) / EntrySize
	if !ok || count > maxEntries {
		return nil, model.Structural(model.CodeTruncatedBundleHeader, "header declares more entries than %d bytes can hold", len(b))
	}

	raw := bytes.Clone(b)
	headerSize := uint64(CountSize + EntrySize*int(count))
	entries := make([]Entry, count)
	offset := headerSize
	for i := range entries {
		row := raw[CountSize+i*EntrySize : CountSize+(i+1)*EntrySize]
		size, fits := readU256(row[:sizeWidth])
		if !fits {
			size = math.MaxUint64
		}
		entries[i] = Entry{
			Index:  i,
			ID:     row[sizeWidth:EntrySize:EntrySize],
			Size:   size,
			Offset: offset,
		}
		offset = entries[i].End()
	}
	return &Bundle{raw: raw, entries: entries}, nil
}

// Parse is ParseHeader plus a check that the declared sizes cover the
// buffer exactly.
func Parse(b []byte) (*Bundle, error) {
	bd, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	end := bd.HeaderSize()
	if n := len(bd.entries); n > 0 {
		end = bd.entries[n-1].End()
	}
	switch {
	case end > uint64(len(bd.raw)):
		return nil, model.Structural(model.CodeDeclaredSizeExceedsBuffer, "entries declare %d bytes, buffer has %d", end, len(bd.raw))
	case end < uint64(len(bd.raw)):
		return nil, model.Structural(model.CodeTrailingBundleBytes, "%d bytes after the last entry", uint64(len(bd.raw))-end)
	}
	return bd, nil
}

// Len returns the number of entries.
func (b *Bundle) Len() int { return len(b.entries) }

// HeaderSize returns the byte length of the count and entry table.
func (b *Bundle) HeaderSize() uint64 {
	return uint64(CountSize + EntrySize*len(b.entries))
}

// Entries returns a copy of the header table.
func (b *Bundle) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		e.ID = bytes.Clone(e.ID)
		out[i] = e
	}
	return out
}

// IDs returns the declared ids in header order.
func (b *Bundle) IDs() [][]byte {
	out := make([][]byte, len(b.entries))
	for i, e := range b.entries {
		out[i] = bytes.Clone(e.ID)
	}
	return out
}

// IDStrings returns the declared ids in header order, base64url encoded.
func (b *Bundle) IDStrings() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.IDString()
	}
	return out
}

// Raw returns a copy of the bytes of entry i.
func (b *Bundle) Raw(i int) ([]byte, error) {
	if i < 0 || i >= len(b.entries) {
		return nil, model.Policy(model.CodeIndexOutOfRange, "entry %d of %d", i, len(b.entries))
	}
	e := b.entries[i]
	if e.End() > uint64(len(b.raw)) {
		return nil, model.Structural(model.CodeDeclaredSizeExceedsBuffer, "entry %d spans [%d, %d), buffer has %d bytes", i, e.Offset, e.End(), len(b.raw))
	}
	return bytes.Clone(b.raw[e.Offset:e.End()]), nil
}

// ItemAt parses entry i and confirms its id matches the header.
func (b *Bundle) ItemAt(c *dataitem.Codec, i int) (*dataitem.Item, error) {
	raw, err := b.Raw(i)
	if err != nil {
		return nil, err
	}
	it, err := c.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(it.ID(), b.entries[i].ID) {
		return nil, model.Structural(model.CodeIDMismatch, "entry %d declares id %s, item has %s", i, b.entries[i].IDString(), it.IDString())
	}
	return it, nil
}

// IDs reads only the header of b and returns the declared ids in order.
func IDs(b []byte) ([][]byte, error) {
	bd, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	return bd.IDs(), nil
}

func appendU256(out []byte, v uint64) []byte {
	out = binary.LittleEndian.AppendUint64(out, v)
	return append(out, make([]byte, sizeWidth-8)...)
}

// readU256 decodes a 32-byte little-endian integer, reporting false when it
// does not fit in a uint64.
func readU256(b []byte) (uint64, bool) {
	for _, x := range b[8:sizeWidth] {
		if x != 0 {
			return 0, false
		}
	}
	return binary.LittleEndian.Uint64(b[:8]), true
}
