// Package deephash implements the recursive, type-tagged SHA-384 hash that
// produces the message every data item signature commits to.
//
// A blob b hashes to H(H("blob" || len(b)) || H(b)). A list [e0..en-1] starts
// from H("list" || n) and folds each element left to right as
// acc = H(acc || DeepHash(e)). Lengths are base-10 ASCII.
package deephash

import (
	"crypto/sha512"
	"hash"
	"strconv"
)

// Size is the digest length in bytes.
const Size = sha512.Size384

// Chunk is either a blob or a list of chunks. The zero value is the empty blob.
type Chunk struct {
	blob   []byte
	list   []Chunk
	isList bool
}

// Blob wraps b as a leaf. b is not copied.
func Blob(b []byte) Chunk { return Chunk{blob: b} }

// String wraps s as a leaf.
func String(s string) Chunk { return Chunk{blob: []byte(s)} }

// List wraps elems as a list node.
func List(elems ...Chunk) Chunk { return Chunk{list: elems, isList: true} }

// IsList reports whether c is a list node.
func (c Chunk) IsList() bool { return c.isList }

// Sum returns the deep hash of c.
func Sum(c Chunk) []byte {
	h := sha512.New384()
	return sum(h, c)
}

// SumList is shorthand for Sum(List(elems...)).
func SumList(elems ...Chunk) []byte {
	return Sum(List(elems...))
}

func sum(h hash.Hash, c Chunk) []byte {
	if !c.isList {
		tag := digest(h, []byte("blob"), []byte(strconv.Itoa(len(c.blob))))
		body := digest(h, c.blob)
		return digest(h, tag, body)
	}
	acc := digest(h, []byte("list"), []byte(strconv.Itoa(len(c.list))))
	for _, e := range c.list {
		acc = digest(h, acc, sum(h, e))
	}
	return acc
}

func digest(h hash.Hash, parts ...[]byte) []byte {
	h.Reset()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(nil)
}
