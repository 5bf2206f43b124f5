// Package storage defines the content-addressed store that holds serialized
// data items and bundles, and the item-id index layered on top of it.
//
// Blobs are keyed by CIDv1 (raw codec, sha2-256) of their exact bytes. Items
// are additionally addressable by their 32-byte id through an ItemIndex.
package storage

import "github.com/ipfs/go-cid"

// CAS is a minimal content-addressable storage interface.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// ItemLocator resolves an item id to the CID of the stored item bytes.
// Locate MUST return ErrNotFound for ids that were never linked.
type ItemLocator interface {
	Locate(itemID []byte) (cid.Cid, error)
}

// ItemIndex records item id to CID links. A link, once written, never changes:
// relinking an id to a different CID returns ErrImmutable.
type ItemIndex interface {
	ItemLocator
	Link(itemID []byte, id cid.Cid) error
}

// ItemPutter is implemented by stores that accept whole serialized items and
// maintain their own index, such as a remote item store.
type ItemPutter interface {
	PutItem(raw []byte) (cid.Cid, error)
}
