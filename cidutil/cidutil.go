// Package cidutil derives the content ids under which serialized items and
// bundles are stored: CIDv1, raw codec, sha2-256.
package cidutil

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Parse decodes s and rejects any CID that could not have come from
// CIDv1RawSHA256CID.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, err
	}
	if err := Check(id); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

// Check reports an error unless id is a defined CIDv1 raw sha2-256.
func Check(id cid.Cid) error {
	if !id.Defined() {
		return fmt.Errorf("cidutil: undefined cid")
	}
	p := id.Prefix()
	if p.Version != 1 || p.Codec != cid.Raw || p.MhType != multihash.SHA2_256 {
		return fmt.Errorf("cidutil: %s is not a CIDv1 raw sha2-256", id)
	}
	return nil
}

// Matches reports whether data is the content addressed by id.
func Matches(id cid.Cid, data []byte) bool {
	got, err := CIDv1RawSHA256CID(data)
	return err == nil && got == id
}
