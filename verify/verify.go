// Package verify checks data items and whole bundles without private keys.
//
// Bundle verification never fails fast: every header entry gets its own
// result so callers can keep the valid items of a multi-tenant bundle and
// quarantine the rest.
package verify

import (
	"bytes"
	"errors"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/model"
)

// ParallelThreshold is the entry count below which bundles are verified on
// the calling goroutine.
const ParallelThreshold = 8

// Verifier holds no mutable state; one value may serve concurrent callers.
type Verifier struct {
	Codec   *dataitem.Codec
	Workers int
	Logger  zerolog.Logger
}

// New returns a verifier using one worker per available CPU and no logging.
func New(c *dataitem.Codec) *Verifier {
	return &Verifier{Codec: c, Workers: runtime.GOMAXPROCS(0), Logger: zerolog.Nop()}
}

// VerifyItem checks structure, identity and signature of it.
//
// An error means the item is structurally unusable; (false, nil) means it is
// well formed but its signature does not verify.
func (v *Verifier) VerifyItem(it *dataitem.Item) (bool, error) {
	if it == nil || !it.IsSigned() {
		return false, model.Policy(model.CodeUnsignedItem, "item has no signature")
	}
	if !bytes.Equal(it.ID(), dataitem.ComputeID(it.Signature())) {
		return false, model.Structural(model.CodeIDMismatch, "id does not match signature")
	}
	return v.Codec.Verify(it)
}

// VerifyItemBytes parses b and verifies the result.
func (v *Verifier) VerifyItemBytes(b []byte) (*dataitem.Item, bool, error) {
	it, err := v.Codec.Parse(b)
	if err != nil {
		return nil, false, err
	}
	ok, err := v.VerifyItem(it)
	return it, ok, err
}

// VerifyBundle verifies every entry of b. Results are in header order
// regardless of which worker finished first.
func (v *Verifier) VerifyBundle(b []byte) model.Report {
	bd, err := bundle.ParseHeader(b)
	if err != nil {
		v.Logger.Warn().Err(err).Int("bytes", len(b)).Msg("bundle header rejected")
		return model.Report{Entries: []model.EntryResult{}, HeaderError: asModelError(err)}
	}

	entries := bd.Entries()
	results := make([]model.EntryResult, len(entries))
	if len(entries) < ParallelThreshold || v.Workers <= 1 {
		for i, e := range entries {
			results[i] = v.checkEntry(bd, e)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(v.Workers)
		for i, e := range entries {
			g.Go(func() error {
				results[i] = v.checkEntry(bd, e)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := model.Report{Count: len(entries), Entries: results}
	failed := 0
	for _, r := range results {
		if r.Valid {
			continue
		}
		failed++
		v.Logger.Debug().
			Int("index", r.Index).
			Str("id", r.ID).
			Str("class", string(r.Class)).
			Str("code", string(r.Code)).
			Msg(r.Reason)
	}
	v.Logger.Debug().Int("entries", len(entries)).Int("failed", failed).Msg("bundle verified")
	return report
}

func (v *Verifier) checkEntry(bd *bundle.Bundle, e bundle.Entry) model.EntryResult {
	res := model.EntryResult{Index: e.Index, ID: e.IDString(), Size: e.Size}
	fail := func(class model.FailureClass, err error) model.EntryResult {
		res.Class = class
		res.Code = model.CodeOf(err)
		if res.Code == "" {
			res.Code = model.CodeInternal
		}
		res.Reason = err.Error()
		return res
	}

	raw, err := bd.Raw(e.Index)
	if err != nil {
		return fail(model.ClassStructural, err)
	}
	it, err := v.Codec.Parse(raw)
	if err != nil {
		return fail(model.ClassStructural, err)
	}
	if uint64(it.Size()) != e.Size {
		return fail(model.ClassStructural, model.Structural(model.CodeSizeMismatch, "item encodes to %d bytes, header declares %d", it.Size(), e.Size))
	}
	if !bytes.Equal(it.ID(), e.ID) {
		return fail(model.ClassIdentity, model.Structural(model.CodeIDMismatch, "header declares %s, signature hashes to %s", e.IDString(), it.IDString()))
	}
	ok, err := v.VerifyItem(it)
	if err != nil {
		return fail(model.ClassStructural, err)
	}
	if !ok {
		return fail(model.ClassCryptographic, model.ErrInvalidSignature)
	}
	res.Valid = true
	return res
}

func asModelError(err error) *model.Error {
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	return model.WrapError(model.KindInternal, model.CodeInternal, err, "verify bundle")
}
