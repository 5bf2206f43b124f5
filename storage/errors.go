package storage

import "errors"

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrInvalidCID    = errors.New("storage: invalid cid")
	ErrCIDMismatch   = errors.New("storage: cid mismatch")
	ErrImmutable     = errors.New("storage: immutable object mismatch")
	ErrInvalidItemID = errors.New("storage: invalid item id")
	ErrItemMismatch  = errors.New("storage: stored item does not match its id")
	ErrNoIndex       = errors.New("storage: backend has no item index")
	ErrItemRejected  = errors.New("storage: item rejected")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
