// Package bundleio moves ANS-104 bundles in and out of a storage.CAS.
//
// Export packs stored items into one bundle. Import verifies a bundle and
// stores the items that pass; items that fail are reported and, when a
// quarantine store is configured, kept there for inspection.
package bundleio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/model"
	"xdao.co/ans104/storage"
	"xdao.co/ans104/verify"
)

// Export reads the items stored under ids and writes them to w as one
// bundle, in the order given. Repeated CIDs are written once.
func Export(w io.Writer, cas storage.CAS, c *dataitem.Codec, ids []cid.Cid) error {
	if cas == nil {
		return fmt.Errorf("bundleio: nil CAS")
	}
	seen := make(map[cid.Cid]struct{}, len(ids))
	items := make([]*dataitem.Item, 0, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		raw, err := cas.Get(id)
		if err != nil {
			return fmt.Errorf("bundleio: get %s: %w", id, err)
		}
		it, err := c.Parse(raw)
		if err != nil {
			return fmt.Errorf("bundleio: %s is not a data item: %w", id, err)
		}
		items = append(items, it)
	}
	return write(w, items)
}

// ExportItems is Export keyed by item id through the store's index.
func ExportItems(w io.Writer, cas storage.CAS, c *dataitem.Codec, itemIDs [][]byte) error {
	items := make([]*dataitem.Item, 0, len(itemIDs))
	seen := make(map[string]struct{}, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, ok := seen[string(itemID)]; ok {
			continue
		}
		seen[string(itemID)] = struct{}{}
		it, _, err := storage.GetItem(cas, c, itemID)
		if err != nil {
			return fmt.Errorf("bundleio: item %s: %w", dataitem.EncodeID(itemID), err)
		}
		items = append(items, it)
	}
	return write(w, items)
}

func write(w io.Writer, items []*dataitem.Item) error {
	raw, err := bundle.Build(items)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// MaxBytes bounds how much of r is read. Zero means no limit.
	MaxBytes int64
	// KeepBundle also stores the whole bundle blob and reports its CID.
	KeepBundle bool
	// Quarantine, when set, receives the raw bytes of entries that fail
	// verification and still lie inside the buffer.
	Quarantine storage.CAS
	Logger     zerolog.Logger
}

// Imported describes one stored entry.
type Imported struct {
	Index int     `json:"index"`
	ID    string  `json:"id"`
	CID   cid.Cid `json:"cid"`
}

// Result is what Import did with each entry of the bundle.
type Result struct {
	Report      model.Report `json:"report"`
	BundleCID   cid.Cid      `json:"bundleCid"`
	Stored      []Imported   `json:"stored"`
	Quarantined []Imported   `json:"quarantined,omitempty"`
}

// Import reads a bundle from r, verifies every entry with v and stores each
// valid item in cas. A bundle whose header cannot be read is returned as the
// header error of the report with nothing stored.
func Import(r io.Reader, cas storage.CAS, v *verify.Verifier, opts ImportOptions) (Result, error) {
	var res Result
	if cas == nil {
		return res, fmt.Errorf("bundleio: nil CAS")
	}
	raw, err := readAll(r, opts.MaxBytes)
	if err != nil {
		return res, err
	}

	res.Report = v.VerifyBundle(raw)
	if res.Report.HeaderError != nil {
		return res, res.Report.HeaderError
	}
	bd, err := bundle.ParseHeader(raw)
	if err != nil {
		return res, err
	}

	if opts.KeepBundle {
		if res.BundleCID, err = cas.Put(raw); err != nil {
			return res, fmt.Errorf("bundleio: store bundle: %w", err)
		}
	}

	for _, e := range res.Report.Entries {
		if !e.Valid {
			if err := quarantine(&res, opts, bd, e); err != nil {
				return res, err
			}
			continue
		}
		it, err := bd.ItemAt(v.Codec, e.Index)
		if err != nil {
			return res, fmt.Errorf("bundleio: entry %d: %w", e.Index, err)
		}
		id, err := storage.PutItem(cas, it)
		if err != nil {
			return res, fmt.Errorf("bundleio: store entry %d: %w", e.Index, err)
		}
		res.Stored = append(res.Stored, Imported{Index: e.Index, ID: e.ID, CID: id})
	}
	opts.Logger.Info().
		Int("entries", res.Report.Count).
		Int("stored", len(res.Stored)).
		Int("quarantined", len(res.Quarantined)).
		Msg("bundle imported")
	return res, nil
}

func quarantine(res *Result, opts ImportOptions, bd *bundle.Bundle, e model.EntryResult) error {
	opts.Logger.Warn().Int("index", e.Index).Str("id", e.ID).Str("code", string(e.Code)).Msg("entry rejected")
	if opts.Quarantine == nil {
		return nil
	}
	raw, err := bd.Raw(e.Index)
	if err != nil {
		return nil
	}
	id, err := opts.Quarantine.Put(raw)
	if err != nil {
		return fmt.Errorf("bundleio: quarantine entry %d: %w", e.Index, err)
	}
	res.Quarantined = append(res.Quarantined, Imported{Index: e.Index, ID: e.ID, CID: id})
	return nil
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("bundleio: bundle exceeds %d bytes", limit)
	}
	return buf.Bytes(), nil
}
