// Package tags encodes the ordered (name, value) metadata pairs of a data item.
//
// The block is the Avro binary encoding of
//
//	{"type":"array","items":{"type":"record","name":"Tag","fields":[
//	  {"name":"name","type":"string"},{"name":"value","type":"string"}]}}
//
// with one exception shared by every implementation of the format: an empty
// tag list encodes to zero bytes rather than a single terminating block.
// The tag count and block length that precede the block in an item are
// written by the item codec, not here.
package tags

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/linkedin/goavro/v2"

	"xdao.co/ans104/model"
)

const schema = `{
  "type": "array",
  "items": {
    "type": "record",
    "name": "Tag",
    "fields": [
      {"name": "name", "type": "string"},
      {"name": "value", "type": "string"}
    ]
  }
}`

// Tag is one metadata pair. Order and duplicates are preserved.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Limits bounds what Encode accepts and Decode returns.
type Limits struct {
	MaxTags       int
	MaxNameBytes  int
	MaxValueBytes int
}

// DefaultLimits are the limits enforced by bundling nodes.
var DefaultLimits = Limits{MaxTags: 128, MaxNameBytes: 1024, MaxValueBytes: 3072}

var codec *goavro.Codec

func init() {
	c, err := goavro.NewCodec(schema)
	if err != nil {
		panic(fmt.Sprintf("tags: invalid avro schema: %v", err))
	}
	codec = c
}

// Check validates tags against l.
func (l Limits) Check(tags []Tag) error {
	if l.MaxTags > 0 && len(tags) > l.MaxTags {
		return model.Policy(model.CodeInvalidTags, "%d tags exceeds maximum of %d", len(tags), l.MaxTags)
	}
	for i, t := range tags {
		if t.Name == "" {
			return model.Policy(model.CodeInvalidTags, "tag %d: empty name", i)
		}
		if l.MaxNameBytes > 0 && len(t.Name) > l.MaxNameBytes {
			return model.Policy(model.CodeInvalidTags, "tag %d: name is %d bytes, maximum is %d", i, len(t.Name), l.MaxNameBytes)
		}
		if l.MaxValueBytes > 0 && len(t.Value) > l.MaxValueBytes {
			return model.Policy(model.CodeInvalidTags, "tag %d: value is %d bytes, maximum is %d", i, len(t.Value), l.MaxValueBytes)
		}
		if !utf8.ValidString(t.Name) || !utf8.ValidString(t.Value) {
			return model.Policy(model.CodeInvalidTags, "tag %d: not valid UTF-8", i)
		}
	}
	return nil
}

// Encode returns the tag block for tags using DefaultLimits.
func Encode(tags []Tag) ([]byte, error) {
	return DefaultLimits.Encode(tags)
}

// Decode parses a tag block holding exactly count tags using DefaultLimits.
func Decode(block []byte, count uint64) ([]Tag, error) {
	return DefaultLimits.Decode(block, count)
}

// Encode returns the tag block for tags. An empty list encodes to nil.
func (l Limits) Encode(tags []Tag) ([]byte, error) {
	if err := l.Check(tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	native := make([]any, len(tags))
	for i, t := range tags {
		native[i] = map[string]any{"name": t.Name, "value": t.Value}
	}
	out, err := codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, model.WrapError(model.KindInternal, model.CodeInternal, err, "encode tags")
	}
	return out, nil
}

// Decode parses block, which must hold exactly count tags and nothing else.
//
// Any disagreement between count, the block length and the bytes the Avro
// decoder consumed is a MalformedTagBlock error, as is a tag outside l.
func (l Limits) Decode(block []byte, count uint64) ([]Tag, error) {
	if len(block) == 0 {
		if count != 0 {
			return nil, model.Structural(model.CodeMalformedTagBlock, "%d tags declared in an empty block", count)
		}
		return []Tag{}, nil
	}
	if count == 0 {
		return nil, model.Structural(model.CodeMalformedTagBlock, "%d byte block declared with zero tags", len(block))
	}
	if l.MaxTags > 0 && count > uint64(l.MaxTags) {
		return nil, model.Structural(model.CodeMalformedTagBlock, "%d tags exceeds maximum of %d", count, l.MaxTags)
	}
	// Each record needs at least two bytes, which bounds the first block count
	// before the decoder sizes anything from it.
	first, n := binary.Varint(block)
	if n <= 0 {
		return nil, model.Structural(model.CodeMalformedTagBlock, "unreadable block count")
	}
	if first < 0 {
		first = -first
	}
	if uint64(first) > uint64(len(block))/2 {
		return nil, model.Structural(model.CodeMalformedTagBlock, "block count %d larger than block", first)
	}

	native, rest, err := codec.NativeFromBinary(block)
	if err != nil {
		return nil, model.WrapError(model.KindStructural, model.CodeMalformedTagBlock, err, "decode tags")
	}
	if len(rest) != 0 {
		return nil, model.Structural(model.CodeMalformedTagBlock, "%d trailing bytes after tags", len(rest))
	}
	list, ok := native.([]any)
	if !ok {
		return nil, model.Structural(model.CodeMalformedTagBlock, "unexpected decoded type %T", native)
	}
	if uint64(len(list)) != count {
		return nil, model.Structural(model.CodeMalformedTagBlock, "declared %d tags, decoded %d", count, len(list))
	}

	out := make([]Tag, len(list))
	for i, v := range list {
		rec, ok := v.(map[string]any)
		if !ok {
			return nil, model.Structural(model.CodeMalformedTagBlock, "tag %d: unexpected decoded type %T", i, v)
		}
		name, _ := rec["name"].(string)
		value, _ := rec["value"].(string)
		out[i] = Tag{Name: name, Value: value}
	}
	if err := l.Check(out); err != nil {
		return nil, model.WrapError(model.KindStructural, model.CodeMalformedTagBlock, err, "decoded tags out of bounds")
	}
	return out, nil
}

// Equal reports whether a and b hold the same tags in the same order.
func Equal(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
