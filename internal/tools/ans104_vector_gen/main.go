package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/tags"
)

// ans104_vector_gen writes the ed25519 conformance vectors into a directory
// (default testdata/conformance/ans104). ed25519 signing is deterministic, so
// rerunning it reproduces the committed files byte for byte.
func main() {
	dir := filepath.Join("testdata", "conformance", "ans104")
	if len(os.Args) == 2 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fail(err)
	}

	c := dataitem.NewCodec(signers.Standard())
	items := []*dataitem.Item{
		sign(c, 0xA1, dataitem.Fields{}),
		sign(c, 0xA2, dataitem.Fields{
			Target: sequence(32),
			Anchor: []byte("0123456789abcdef0123456789abcdef"),
			Tags: []tags.Tag{
				{Name: "Content-Type", Value: "text/plain"},
				{Name: "App-Name", Value: "ans104-conformance"},
			},
			Data: []byte("hello bundle"),
		}),
		sign(c, 0xA3, dataitem.Fields{
			Anchor: []byte("anchor-anchor-anchor-anchor-0003"),
			Tags:   []tags.Tag{{Name: "name", Value: "value"}},
			Data:   bytes.Repeat([]byte{0x00, 0x01, 0x02}, 100),
		}),
	}

	for i, it := range items[:2] {
		name := fmt.Sprintf("ed25519_item_%d", i+1)
		raw, err := it.Bytes()
		if err != nil {
			fail(err)
		}
		write(dir, name+".bin", raw)
		write(dir, name+".id", []byte(it.IDString()+"\n"))
	}

	raw, err := bundle.Build(items)
	if err != nil {
		fail(err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.IDString()
	}
	write(dir, "bundle_3.bin", raw)
	write(dir, "bundle_3.ids", []byte(strings.Join(ids, "\n")+"\n"))
}

func sign(c *dataitem.Codec, seed byte, f dataitem.Fields) *dataitem.Item {
	it, err := c.New(signers.TypeED25519, f)
	if err != nil {
		fail(err)
	}
	signed, err := c.Sign(it, keys.FixedSeed(seed))
	if err != nil {
		fail(err)
	}
	return signed
}

func sequence(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func write(dir, name string, b []byte) {
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("%s\t%d bytes\n", name, len(b))
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
