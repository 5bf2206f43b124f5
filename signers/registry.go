// Package signers is the signature scheme registry.
//
// Every chain family a data item can be signed with is a Scheme identified by
// a numeric Type. The numeric codes, key lengths and signature lengths are
// interoperability constants of the bundling network; they are not to be
// renumbered. A Registry is built once, is immutable, and is passed by
// reference to the item codec.
package signers

import (
	"fmt"
	"sort"
	"strings"

	"xdao.co/ans104/model"
)

// Type is the little-endian u16 signature type written at the start of every item.
type Type uint16

const (
	TypeArweave       Type = 1
	TypeED25519       Type = 2
	TypeEthereum      Type = 3
	TypeSolana        Type = 4
	TypeInjectedAptos Type = 5
	TypeMultiAptos    Type = 6
	TypeTypedEthereum Type = 7
	TypeCosmos        Type = 8
)

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint16(t))
}

var typeNames = map[Type]string{
	TypeArweave:       "arweave",
	TypeED25519:       "ed25519",
	TypeEthereum:      "ethereum",
	TypeSolana:        "solana",
	TypeInjectedAptos: "injectedAptos",
	TypeMultiAptos:    "multiAptos",
	TypeTypedEthereum: "typedEthereum",
	TypeCosmos:        "cosmos",
}

// Scheme is one chain family's signing capability.
//
// Sign receives raw private key material (the accepted encodings are scheme
// specific) and must not retain it. Verify never returns an error: a
// signature that does not verify, or key bytes that do not decode, are both
// simply false.
type Scheme interface {
	Type() Type
	Name() string
	PublicKeyLength() int
	SignatureLength() int
	PublicKey(privateKey []byte) ([]byte, error)
	Sign(privateKey, message []byte) ([]byte, error)
	Verify(publicKey, message, signature []byte) bool
	Address(publicKey []byte) (string, error)
}

// Aliased is implemented by schemes that answer to more than one selector.
type Aliased interface {
	Aliases() []string
}

// Registry dispatches by Type or selector. It performs no chain logic itself.
type Registry struct {
	byType map[Type]Scheme
	byName map[string]Scheme
	types  []Type
}

// NewRegistry builds a registry from schemes. Duplicate types or selectors are
// rejected.
func NewRegistry(schemes ...Scheme) (*Registry, error) {
	r := &Registry{
		byType: make(map[Type]Scheme, len(schemes)),
		byName: make(map[string]Scheme, len(schemes)),
	}
	for _, s := range schemes {
		if s == nil {
			return nil, model.NewError(model.KindInternal, model.CodeDuplicateScheme, "nil scheme")
		}
		if _, ok := r.byType[s.Type()]; ok {
			return nil, model.NewError(model.KindInternal, model.CodeDuplicateScheme, "duplicate signature type %d", s.Type())
		}
		r.byType[s.Type()] = s
		r.types = append(r.types, s.Type())

		names := []string{s.Name()}
		if a, ok := s.(Aliased); ok {
			names = append(names, a.Aliases()...)
		}
		for _, n := range names {
			key := strings.ToLower(n)
			if _, ok := r.byName[key]; ok {
				return nil, model.NewError(model.KindInternal, model.CodeDuplicateScheme, "duplicate scheme selector %q", n)
			}
			r.byName[key] = s
		}
	}
	sort.Slice(r.types, func(i, j int) bool { return r.types[i] < r.types[j] })
	return r, nil
}

// Lookup returns the scheme for t, or an UnsupportedSignatureScheme error.
func (r *Registry) Lookup(t Type) (Scheme, error) {
	if r != nil {
		if s, ok := r.byType[t]; ok {
			return s, nil
		}
	}
	return nil, model.Structural(model.CodeUnsupportedSignatureScheme, "signature type %d is not registered", uint16(t))
}

// ByName resolves a chain-family selector such as "ethereum" or "solana".
// Matching is case-insensitive.
func (r *Registry) ByName(name string) (Scheme, error) {
	if r != nil {
		if s, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
			return s, nil
		}
	}
	return nil, model.NewError(model.KindPolicy, model.CodeUnsupportedSignatureScheme, "unknown signature scheme %q", name)
}

// Types returns the registered type codes in ascending order.
func (r *Registry) Types() []Type {
	if r == nil {
		return nil
	}
	return append([]Type(nil), r.types...)
}

// StandardSchemes returns one instance of every scheme the network accepts.
func StandardSchemes() []Scheme {
	return []Scheme{
		NewArweave(),
		NewED25519(),
		NewEthereum(),
		NewSolana(),
		NewInjectedAptos(),
		NewMultiAptos(),
		NewTypedEthereum(),
		NewCosmos(),
	}
}

// Standard returns a registry holding StandardSchemes.
func Standard() *Registry {
	r, err := NewRegistry(StandardSchemes()...)
	if err != nil {
		panic(fmt.Sprintf("signers: standard registry: %v", err))
	}
	return r
}

func invalidKey(format string, args ...any) error {
	return model.NewError(model.KindPolicy, model.CodeInvalidKey, format, args...)
}

func signingFailed(cause error, format string, args ...any) error {
	return model.WrapError(model.KindInternal, model.CodeSigningFailed, cause, format, args...)
}
