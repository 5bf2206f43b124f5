package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/ans104/cidutil"
)

// NamedCAS associates a CAS with a stable backend name.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS writes to all configured backends.
//
// Reads fall back in order. Writes go to all backends and require all returned
// CIDs to match (otherwise ErrCIDMismatch is returned). Links are written to
// every backend that keeps an item index.
type ReplicatingCAS struct {
	Backends []NamedCAS
}

var (
	_ CAS       = ReplicatingCAS{}
	_ ItemIndex = ReplicatingCAS{}
)

// PutAll writes the same bytes to all backends and returns the canonical CID
// together with what each backend returned.
func (r ReplicatingCAS) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if err := r.check(); err != nil {
		return cid.Undef, nil, err
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		got, err := b.CAS.Put(bytes)
		if err != nil {
			return cid.Undef, out, fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	return MultiCAS{Adapters: r.adapters()}.Get(id)
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	return MultiCAS{Adapters: r.adapters()}.Has(id)
}

// Link writes the link to every indexing backend. At least one backend must
// keep an index.
func (r ReplicatingCAS) Link(itemID []byte, id cid.Cid) error {
	if err := r.check(); err != nil {
		return err
	}
	linked := 0
	for _, b := range r.Backends {
		idx, ok := b.CAS.(ItemIndex)
		if !ok {
			continue
		}
		if err := idx.Link(itemID, id); err != nil {
			return fmt.Errorf("storage: backend %q: %w", b.Name, err)
		}
		linked++
	}
	if linked == 0 {
		return ErrNoIndex
	}
	return nil
}

func (r ReplicatingCAS) Locate(itemID []byte) (cid.Cid, error) {
	return locateAny(itemID, r.adapters())
}

func (r ReplicatingCAS) check() error {
	if len(r.Backends) == 0 {
		return fmt.Errorf("storage: ReplicatingCAS has no backends")
	}
	for _, b := range r.Backends {
		if b.CAS == nil {
			return fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
	}
	return nil
}

func (r ReplicatingCAS) adapters() []CAS {
	out := make([]CAS, 0, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS != nil {
			out = append(out, b.CAS)
		}
	}
	return out
}
