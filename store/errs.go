package store

import "errors"

var (
	ErrBadDocument = errors.New("bad document")
)
