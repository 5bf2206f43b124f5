// Package keys handles raw private key material on its way into a signer.
//
// It decodes the textual forms wallets hand out (hex, base58), derives
// deterministic per-label seeds for fixtures and tooling, and wipes buffers
// once a signature has been produced. It never stores keys.
package keys
