package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// MultiCAS provides ordered fallback across multiple CAS adapters.
//
// Reads and item lookups try adapters in slice order. Put and Link write only
// to the first adapter, so a cold cache can sit behind a primary store.
type MultiCAS struct {
	Adapters []CAS
}

var (
	_ CAS       = MultiCAS{}
	_ ItemIndex = MultiCAS{}
)

func (m MultiCAS) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Adapters) == 0 {
		return cid.Undef, errors.New("storage: MultiCAS has no adapters")
	}
	return m.Adapters[0].Put(bytes)
}

func (m MultiCAS) Get(id cid.Cid) ([]byte, error) {
	for _, cas := range m.Adapters {
		b, err := cas.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (m MultiCAS) Has(id cid.Cid) bool {
	for _, cas := range m.Adapters {
		if cas.Has(id) {
			return true
		}
	}
	return false
}

// Link records the link on the first adapter.
func (m MultiCAS) Link(itemID []byte, id cid.Cid) error {
	if len(m.Adapters) == 0 {
		return errors.New("storage: MultiCAS has no adapters")
	}
	idx, ok := m.Adapters[0].(ItemIndex)
	if !ok {
		return ErrNoIndex
	}
	return idx.Link(itemID, id)
}

func (m MultiCAS) Locate(itemID []byte) (cid.Cid, error) {
	return locateAny(itemID, m.Adapters)
}

func locateAny(itemID []byte, adapters []CAS) (cid.Cid, error) {
	if err := CheckItemID(itemID); err != nil {
		return cid.Undef, err
	}
	for _, cas := range adapters {
		loc, ok := cas.(ItemLocator)
		if !ok {
			continue
		}
		id, err := loc.Locate(itemID)
		if err == nil {
			return id, nil
		}
		if !IsNotFound(err) {
			return cid.Undef, err
		}
	}
	return cid.Undef, ErrNotFound
}
