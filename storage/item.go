package storage

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/ans104/dataitem"
)

// CheckItemID rejects anything that is not a 32-byte item id.
func CheckItemID(itemID []byte) error {
	if len(itemID) != dataitem.IDSize {
		return fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidItemID, dataitem.IDSize, len(itemID))
	}
	return nil
}

// PutItem stores the serialized form of a signed item and, when cas is also
// an ItemIndex, links the item id to the returned CID. Stores implementing
// ItemPutter take the item whole.
func PutItem(cas CAS, it *dataitem.Item) (cid.Cid, error) {
	raw, err := it.Bytes()
	if err != nil {
		return cid.Undef, err
	}
	if p, ok := cas.(ItemPutter); ok {
		return p.PutItem(raw)
	}
	id, err := cas.Put(raw)
	if err != nil {
		return cid.Undef, err
	}
	if idx, ok := cas.(ItemIndex); ok {
		if err := idx.Link(it.ID(), id); err != nil {
			return cid.Undef, err
		}
	}
	return id, nil
}

// GetItem loads the item with the given id through the index of cas and parses
// it with c. The parsed item must carry the requested id.
func GetItem(cas CAS, c *dataitem.Codec, itemID []byte) (*dataitem.Item, cid.Cid, error) {
	if err := CheckItemID(itemID); err != nil {
		return nil, cid.Undef, err
	}
	loc, ok := cas.(ItemLocator)
	if !ok {
		return nil, cid.Undef, ErrNoIndex
	}
	id, err := loc.Locate(itemID)
	if err != nil {
		return nil, cid.Undef, err
	}
	raw, err := cas.Get(id)
	if err != nil {
		return nil, cid.Undef, err
	}
	it, err := c.Parse(raw)
	if err != nil {
		return nil, cid.Undef, fmt.Errorf("storage: parse item %s: %w", id, err)
	}
	if !bytes.Equal(it.ID(), itemID) {
		return nil, cid.Undef, ErrItemMismatch
	}
	return it, id, nil
}
