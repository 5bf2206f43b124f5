package model

import (
	"errors"
	"fmt"
)

// Kind is a stable failure category.
//
// Structural failures describe malformed bytes, Crypto failures describe a
// well-formed signature that does not verify, Policy failures describe an
// operation the codec refuses to perform before producing any bytes.
type Kind string

const (
	KindStructural Kind = "Structural"
	KindCrypto     Kind = "Crypto"
	KindPolicy     Kind = "Policy"
	KindInternal   Kind = "Internal"
)

// ErrorCode names the violated rule. Codes are stable across versions.
type ErrorCode string

const (
	CodeTruncatedItem              ErrorCode = "TRUNCATED_ITEM"
	CodeMalformedTagBlock          ErrorCode = "MALFORMED_TAG_BLOCK"
	CodeUnsupportedSignatureScheme ErrorCode = "UNSUPPORTED_SIGNATURE_SCHEME"
	CodeInvalidPresenceByte        ErrorCode = "INVALID_PRESENCE_BYTE"
	CodeInvalidLength              ErrorCode = "INVALID_LENGTH"
	CodeTruncatedBundleHeader      ErrorCode = "TRUNCATED_BUNDLE_HEADER"
	CodeDeclaredSizeExceedsBuffer  ErrorCode = "DECLARED_SIZE_EXCEEDS_BUFFER"
	CodeTrailingBundleBytes        ErrorCode = "TRAILING_BUNDLE_BYTES"
	CodeSizeMismatch               ErrorCode = "SIZE_MISMATCH"
	CodeIDMismatch                 ErrorCode = "ID_MISMATCH"
	CodeInvalidSignature           ErrorCode = "INVALID_SIGNATURE"
	CodeUnsignedItem               ErrorCode = "UNSIGNED_ITEM"
	CodeUnsignedItemInBundle       ErrorCode = "UNSIGNED_ITEM_IN_BUNDLE"
	CodeInvalidTarget              ErrorCode = "INVALID_TARGET"
	CodeInvalidAnchor              ErrorCode = "INVALID_ANCHOR"
	CodeInvalidTags                ErrorCode = "INVALID_TAGS"
	CodeInvalidKey                 ErrorCode = "INVALID_KEY"
	CodeSigningFailed              ErrorCode = "SIGNING_FAILED"
	CodeDuplicateScheme            ErrorCode = "DUPLICATE_SCHEME"
	CodeIndexOutOfRange            ErrorCode = "INDEX_OUT_OF_RANGE"
	CodeInternal                   ErrorCode = "INTERNAL"
)

// Error is the structured error returned by every codec package.
//
// Message is for humans; do not match on it. errors.Is matches any *Error
// with the same Code, so the sentinel values below can be used as targets.
type Error struct {
	Kind    Kind      `json:"kind"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrTruncatedItem              = &Error{Kind: KindStructural, Code: CodeTruncatedItem, Message: "truncated item"}
	ErrMalformedTagBlock          = &Error{Kind: KindStructural, Code: CodeMalformedTagBlock, Message: "malformed tag block"}
	ErrUnsupportedSignatureScheme = &Error{Kind: KindStructural, Code: CodeUnsupportedSignatureScheme, Message: "unsupported signature scheme"}
	ErrInvalidPresenceByte        = &Error{Kind: KindStructural, Code: CodeInvalidPresenceByte, Message: "invalid presence byte"}
	ErrInvalidLength              = &Error{Kind: KindStructural, Code: CodeInvalidLength, Message: "invalid field length"}
	ErrTruncatedBundleHeader      = &Error{Kind: KindStructural, Code: CodeTruncatedBundleHeader, Message: "truncated bundle header"}
	ErrDeclaredSizeExceedsBuffer  = &Error{Kind: KindStructural, Code: CodeDeclaredSizeExceedsBuffer, Message: "declared size exceeds buffer"}
	ErrTrailingBundleBytes        = &Error{Kind: KindStructural, Code: CodeTrailingBundleBytes, Message: "trailing bundle bytes"}
	ErrSizeMismatch               = &Error{Kind: KindStructural, Code: CodeSizeMismatch, Message: "size mismatch"}
	ErrIDMismatch                 = &Error{Kind: KindStructural, Code: CodeIDMismatch, Message: "id mismatch"}
	ErrInvalidSignature           = &Error{Kind: KindCrypto, Code: CodeInvalidSignature, Message: "invalid signature"}
	ErrUnsignedItem               = &Error{Kind: KindPolicy, Code: CodeUnsignedItem, Message: "item is not signed"}
	ErrUnsignedItemInBundle       = &Error{Kind: KindPolicy, Code: CodeUnsignedItemInBundle, Message: "unsigned item in bundle"}
	ErrInvalidTarget              = &Error{Kind: KindPolicy, Code: CodeInvalidTarget, Message: "invalid target"}
	ErrInvalidAnchor              = &Error{Kind: KindPolicy, Code: CodeInvalidAnchor, Message: "invalid anchor"}
	ErrInvalidTags                = &Error{Kind: KindPolicy, Code: CodeInvalidTags, Message: "invalid tags"}
	ErrInvalidKey                 = &Error{Kind: KindPolicy, Code: CodeInvalidKey, Message: "invalid key"}
	ErrIndexOutOfRange            = &Error{Kind: KindPolicy, Code: CodeIndexOutOfRange, Message: "index out of range"}
)

// NewError returns a structured error without a cause.
func NewError(kind Kind, code ErrorCode, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError returns a structured error wrapping cause. A nil cause yields the
// same value as NewError.
func WrapError(kind Kind, code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Structural is shorthand for NewError(KindStructural, ...).
func Structural(code ErrorCode, format string, args ...any) *Error {
	return NewError(KindStructural, code, format, args...)
}

// Policy is shorthand for NewError(KindPolicy, ...).
func Policy(code ErrorCode, format string, args ...any) *Error {
	return NewError(KindPolicy, code, format, args...)
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// CodeOf returns the stable code of a structured error, or "" if err is not one.
func CodeOf(err error) ErrorCode {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
