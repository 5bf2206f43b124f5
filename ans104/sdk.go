// Package ans104 is the boundary used by network clients, CLIs and wallet
// loaders: sign an item, verify an item, build a bundle, verify a bundle and
// list bundle ids. It accepts and returns fully materialized byte buffers and
// performs no I/O.
package ans104

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"xdao.co/ans104/bundle"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/model"
	"xdao.co/ans104/signers"
	"xdao.co/ans104/verify"
)

// Options controls SDK construction. The zero value uses DefaultConfig, the
// standard registry and no logging.
type Options struct {
	Config   Config
	Registry *signers.Registry
	Logger   *zerolog.Logger
}

// SDK is safe for concurrent use.
type SDK struct {
	registry *signers.Registry
	codec    *dataitem.Codec
	verifier *verify.Verifier
}

// New builds an SDK from opts.
func New(opts Options) (*SDK, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	cfg := opts.Config.withDefaults()
	reg := opts.Registry
	if reg == nil {
		reg = signers.Standard()
	}
	codec := &dataitem.Codec{Registry: reg, Limits: cfg.limits()}
	v := verify.New(codec)
	v.Workers = cfg.Workers
	if opts.Logger != nil {
		v.Logger = opts.Logger.With().Str("component", "ans104").Logger()
	}
	return &SDK{registry: reg, codec: codec, verifier: v}, nil
}

// Default returns an SDK with Options{}.
func Default() *SDK {
	s, err := New(Options{})
	if err != nil {
		panic(fmt.Sprintf("ans104: default sdk: %v", err))
	}
	return s
}

func (s *SDK) Registry() *signers.Registry { return s.registry }
func (s *SDK) Codec() *dataitem.Codec      { return s.codec }
func (s *SDK) Verifier() *verify.Verifier  { return s.verifier }

// Scheme resolves a selector: a chain-family name ("ethereum", "solana", ...)
// or a decimal signature type ("3").
func (s *SDK) Scheme(selector string) (signers.Scheme, error) {
	if n, err := strconv.ParseUint(selector, 10, 16); err == nil {
		sc, err := s.registry.Lookup(signers.Type(n))
		if err != nil {
			return nil, model.WrapError(model.KindPolicy, model.CodeUnsupportedSignatureScheme, err, "selector %q", selector)
		}
		return sc, nil
	}
	return s.registry.ByName(selector)
}

// SignItem builds an item from fields, signs it with privateKey under the
// scheme named by selector and returns the serialized item.
func (s *SDK) SignItem(fields dataitem.Fields, selector string, privateKey []byte) ([]byte, error) {
	scheme, err := s.Scheme(selector)
	if err != nil {
		return nil, err
	}
	it, err := s.codec.New(scheme.Type(), fields)
	if err != nil {
		return nil, err
	}
	signed, err := s.codec.Sign(it, privateKey)
	if err != nil {
		return nil, err
	}
	return signed.Bytes()
}

// VerifyItem returns nil when itemBytes is a well-formed item whose signature
// verifies. A signature that does not verify is reported as
// model.ErrInvalidSignature (Kind Crypto); anything else is structural.
func (s *SDK) VerifyItem(itemBytes []byte) error {
	_, ok, err := s.verifier.VerifyItemBytes(itemBytes)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrInvalidSignature
	}
	return nil
}

// BuildBundle parses each serialized item and packs them in order.
func (s *SDK) BuildBundle(items [][]byte) ([]byte, error) {
	parsed := make([]*dataitem.Item, len(items))
	for i, b := range items {
		it, err := s.codec.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		parsed[i] = it
	}
	return bundle.Build(parsed)
}

// VerifyBundle returns the per-index verification report of bundleBytes.
func (s *SDK) VerifyBundle(bundleBytes []byte) model.Report {
	return s.verifier.VerifyBundle(bundleBytes)
}

// BundleIDs returns the declared ids of bundleBytes, base64url encoded, from
// the header alone.
func (s *SDK) BundleIDs(bundleBytes []byte) ([]string, error) {
	bd, err := bundle.ParseHeader(bundleBytes)
	if err != nil {
		return nil, err
	}
	return bd.IDStrings(), nil
}
