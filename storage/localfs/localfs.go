// Package localfs is a filesystem-backed storage.CAS with an item-id index.
//
// Layout under the root directory:
//
//	blocks/<cid[:2]>/<cid>   serialized items and bundles, read-only files
//	items/<id[:2]>/<id>      CID string of the item with base64url id <id>
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/ans104/cidutil"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/storage"
)

// CAS is a local filesystem-backed content-addressable store.
//
// Objects are stored immutably and keyed strictly by CID. It never uses the
// network and never depends on wall-clock time.
type CAS struct {
	root string
}

var (
	_ storage.CAS       = (*CAS)(nil)
	_ storage.ItemIndex = (*CAS)(nil)
)

// New constructs a filesystem CAS rooted at root. The directory will be created if needed.
func New(root string) (*CAS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &CAS{root: root}, nil
}

func (c *CAS) Put(data []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return cid.Undef, err
	}
	if err := writeOnce(c.blockPath(id), data); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(c.blockPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	if !cidutil.Matches(id, b) {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.blockPath(id))
	return err == nil
}

func (c *CAS) Link(itemID []byte, id cid.Cid) error {
	if err := storage.CheckItemID(itemID); err != nil {
		return err
	}
	if err := cidutil.Check(id); err != nil {
		return storage.ErrInvalidCID
	}
	return writeOnce(c.itemPath(itemID), []byte(id.String()))
}

func (c *CAS) Locate(itemID []byte) (cid.Cid, error) {
	if err := storage.CheckItemID(itemID); err != nil {
		return cid.Undef, err
	}
	b, err := os.ReadFile(c.itemPath(itemID))
	if err != nil {
		if os.IsNotExist(err) {
			return cid.Undef, storage.ErrNotFound
		}
		return cid.Undef, err
	}
	id, err := cidutil.Parse(string(b))
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	return id, nil
}

func (c *CAS) blockPath(id cid.Cid) string {
	return shard(filepath.Join(c.root, "blocks"), id.String())
}

func (c *CAS) itemPath(itemID []byte) string {
	return shard(filepath.Join(c.root, "items"), dataitem.EncodeID(itemID))
}

func shard(dir, name string) string {
	if len(name) < 2 {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, name[:2], name)
}

// writeOnce creates path with data. An existing file must already hold
// exactly data, otherwise ErrImmutable is returned and nothing is rewritten.
func writeOnce(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if !os.IsExist(err) {
			return err
		}
		existing, rerr := os.ReadFile(path)
		if rerr != nil || !bytes.Equal(existing, data) {
			return storage.ErrImmutable
		}
		return nil
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
