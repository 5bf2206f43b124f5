// Package testkit holds conformance suites every storage backend must pass.
package testkit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/ans104/cidutil"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/storage"
	"xdao.co/ans104/tags"
)

// NewCAS constructs a fresh, empty CAS instance for a test.
// The returned CAS MUST be isolated from other tests.
type NewCAS func(t *testing.T) storage.CAS

// SignedItem returns a deterministic ed25519 item whose payload depends on seq.
func SignedItem(t *testing.T, seq byte) *dataitem.Item {
	t.Helper()
	c := dataitem.NewCodec(signers.Standard())
	it, err := c.New(signers.TypeED25519, dataitem.Fields{
		Tags: []tags.Tag{{Name: "Content-Type", Value: "application/octet-stream"}},
		Data: []byte{0xCA, 0xFE, seq},
	})
	if err != nil {
		t.Fatalf("New item failed: %v", err)
	}
	signed, err := c.Sign(it, keys.FixedSeed(seq))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return signed
}

func RunCASConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		cas := newCAS(t)
		want, err := SignedItem(t, 1).Bytes()
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}

		id, err := cas.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.CIDv1RawSHA256CID(want)
		if err != nil {
			t.Fatalf("CIDv1RawSHA256CID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put CID mismatch: got %s want %s", id, wantID)
		}

		got, err := cas.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("same bytes")

		id1, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := cas.Put(b)
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		cas := newCAS(t)
		b := []byte("missing")
		id, err := cidutil.CIDv1RawSHA256CID(b)
		if err != nil {
			t.Fatalf("CIDv1RawSHA256CID failed: %v", err)
		}

		if cas.Has(id) {
			t.Fatalf("Has returned true for missing CID")
		}
		_, err = cas.Get(id)
		if !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got err=%v want ErrNotFound", err)
		}

		if _, err = cas.Put(b); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !cas.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("RejectUndefCID", func(t *testing.T) {
		cas := newCAS(t)
		var undef cid.Cid
		if cas.Has(undef) {
			t.Fatalf("Has should be false for undefined CID")
		}
		if _, err := cas.Get(undef); err == nil {
			t.Fatalf("Get should fail for undefined CID")
		}
	})
}

// RunItemIndexConformance checks the id to CID index. newCAS must return a
// backend that implements storage.ItemIndex.
func RunItemIndexConformance(t *testing.T, newCAS NewCAS) {
	t.Helper()

	index := func(t *testing.T) (storage.CAS, storage.ItemIndex) {
		cas := newCAS(t)
		idx, ok := cas.(storage.ItemIndex)
		if !ok {
			t.Fatalf("%T does not implement storage.ItemIndex", cas)
		}
		return cas, idx
	}

	t.Run("PutItemThenGetItem", func(t *testing.T) {
		cas, _ := index(t)
		it := SignedItem(t, 2)
		id, err := storage.PutItem(cas, it)
		if err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
		got, gotCID, err := storage.GetItem(cas, dataitem.NewCodec(signers.Standard()), it.ID())
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if gotCID != id || !got.Equal(it) {
			t.Fatalf("GetItem returned a different item")
		}
	})

	t.Run("LinkIdempotentAndImmutable", func(t *testing.T) {
		cas, idx := index(t)
		it := SignedItem(t, 3)
		id, err := storage.PutItem(cas, it)
		if err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
		if err := idx.Link(it.ID(), id); err != nil {
			t.Fatalf("relink same CID failed: %v", err)
		}
		other, err := cas.Put([]byte("other"))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := idx.Link(it.ID(), other); !errors.Is(err, storage.ErrImmutable) {
			t.Fatalf("relink different CID: got %v want ErrImmutable", err)
		}
	})

	t.Run("LocateMissingAndInvalid", func(t *testing.T) {
		_, idx := index(t)
		if _, err := idx.Locate(make([]byte, dataitem.IDSize)); !storage.IsNotFound(err) {
			t.Fatalf("Locate missing: got %v want ErrNotFound", err)
		}
		if _, err := idx.Locate([]byte{1, 2, 3}); !errors.Is(err, storage.ErrInvalidItemID) {
			t.Fatalf("Locate short id: got %v want ErrInvalidItemID", err)
		}
	})

	t.Run("GetItemDetectsWrongLink", func(t *testing.T) {
		cas, idx := index(t)
		a, b := SignedItem(t, 4), SignedItem(t, 5)
		bID, err := storage.PutItem(cas, b)
		if err != nil {
			t.Fatalf("PutItem failed: %v", err)
		}
		if err := idx.Link(a.ID(), bID); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
		_, _, err = storage.GetItem(cas, dataitem.NewCodec(signers.Standard()), a.ID())
		if !errors.Is(err, storage.ErrItemMismatch) {
			t.Fatalf("GetItem wrong link: got %v want ErrItemMismatch", err)
		}
	})
}
