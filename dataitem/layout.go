package dataitem

import (
	"encoding/binary"

	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
)

func encode(t signers.Type, signature, owner, target, anchor []byte, tagCount uint64, rawTags, data []byte) []byte {
	size := 2 + len(signature) + len(owner) + presenceLen(target) + presenceLen(anchor) + 16 + len(rawTags) + len(data)
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint16(out, uint16(t))
	out = append(out, signature...)
	out = append(out, owner...)
	out = appendOptional(out, target)
	out = appendOptional(out, anchor)
	out = binary.LittleEndian.AppendUint64(out, tagCount)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(rawTags)))
	out = append(out, rawTags...)
	out = append(out, data...)
	return out
}

func appendOptional(out, field []byte) []byte {
	if len(field) == 0 {
		return append(out, 0)
	}
	out = append(out, 1)
	return append(out, field...)
}

func presenceLen(b []byte) int {
	if len(b) == 0 {
		return 1
	}
	return 1 + FieldSize
}

// reader walks a buffer without ever reading past its end.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) next(n int) ([]byte, bool) {
	if n < 0 || n > r.remaining() {
		return nil, false
	}
	out := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return out, true
}

func (r *reader) rest() []byte {
	out := r.buf[r.off:len(r.buf):len(r.buf)]
	r.off = len(r.buf)
	return out
}

func (r *reader) optional(name string) ([]byte, error) {
	flag, ok := r.next(1)
	if !ok {
		return nil, truncated(name+" flag", 1, r.remaining())
	}
	switch flag[0] {
	case 0:
		return nil, nil
	case 1:
		v, ok := r.next(FieldSize)
		if !ok {
			return nil, truncated(name, FieldSize, r.remaining())
		}
		return v, nil
	default:
		return nil, model.Structural(model.CodeInvalidPresenceByte, "%s flag is %d, want 0 or 1", name, flag[0])
	}
}

func optionalField(b []byte, sentinel *model.Error, name string) ([]byte, error) {
	switch len(b) {
	case 0:
		return nil, nil
	case FieldSize:
		out := make([]byte, FieldSize)
		copy(out, b)
		return out, nil
	default:
		return nil, model.Policy(sentinel.Code, "%s must be %d bytes, got %d", name, FieldSize, len(b))
	}
}

func truncated(field string, need, have int) error {
	return model.Structural(model.CodeTruncatedItem, "%s needs %d bytes, %d remain", field, need, have)
}

func errUnsigned() error {
	return model.Policy(model.CodeUnsignedItem, "item has no signature")
}

func errIDLength(n int) error {
	return model.Structural(model.CodeInvalidLength, "id must be %d bytes, got %d", IDSize, n)
}
