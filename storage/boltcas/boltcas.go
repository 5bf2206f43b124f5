// Package boltcas is a single-file storage.CAS backed by bbolt. Blocks live in
// one bucket keyed by CID bytes; the item index lives in another keyed by the
// raw 32-byte item id.
package boltcas

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"go.etcd.io/bbolt"

	"xdao.co/ans104/cidutil"
	"xdao.co/ans104/storage"
)

var (
	blocksBucket = []byte("blocks")
	itemsBucket  = []byte("items")
)

// CAS is safe for concurrent use; bbolt serializes writers.
type CAS struct {
	db *bbolt.DB
}

var (
	_ storage.CAS       = (*CAS)(nil)
	_ storage.ItemIndex = (*CAS)(nil)
)

// Open opens or creates the database file at path.
func Open(path string) (*CAS, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("boltcas: database path is required")
	}
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltcas: open: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{blocksBucket, itemsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltcas: create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &CAS{db: db}, nil
}

// Close closes the underlying database.
func (c *CAS) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	err = c.db.Update(func(tx *bbolt.Tx) error {
		return putOnce(tx.Bucket(blocksBucket), id.Bytes(), data)
	})
	if err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	var out []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blocksBucket).Get(id.Bytes())
		if v == nil {
			return storage.ErrNotFound
		}
		out = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !cidutil.Matches(id, out) {
		return nil, storage.ErrCIDMismatch
	}
	return out, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	found := false
	_ = c.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(blocksBucket).Get(id.Bytes()) != nil
		return nil
	})
	return found
}

func (c *CAS) Link(itemID []byte, id cid.Cid) error {
	if err := storage.CheckItemID(itemID); err != nil {
		return err
	}
	if err := cidutil.Check(id); err != nil {
		return storage.ErrInvalidCID
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return putOnce(tx.Bucket(itemsBucket), itemID, id.Bytes())
	})
}

func (c *CAS) Locate(itemID []byte) (cid.Cid, error) {
	if err := storage.CheckItemID(itemID); err != nil {
		return cid.Undef, err
	}
	var raw []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(itemsBucket).Get(itemID)
		if v == nil {
			return storage.ErrNotFound
		}
		raw = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return cid.Undef, err
	}
	id, err := cid.Cast(raw)
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	return id, nil
}

// Count returns the number of stored blocks and indexed items.
func (c *CAS) Count() (blocks, items int, err error) {
	err = c.db.View(func(tx *bbolt.Tx) error {
		blocks = tx.Bucket(blocksBucket).Stats().KeyN
		items = tx.Bucket(itemsBucket).Stats().KeyN
		return nil
	})
	return blocks, items, err
}

func putOnce(b *bbolt.Bucket, key, value []byte) error {
	if existing := b.Get(key); existing != nil {
		if !bytes.Equal(existing, value) {
			return storage.ErrImmutable
		}
		return nil
	}
	return b.Put(key, value)
}
