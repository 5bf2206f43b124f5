// Package model defines the stable boundary types shared by the item, bundle
// and verification packages.
//
// Errors carry a Kind (structural, cryptographic, policy) and a stable Code.
// Callers should branch on those rather than on message text. Report is the
// only type intended for direct JSON serialization by consumers.
package model
