package graph

import "errors"

var (
	ErrNotFound = errors.New("not found")
)
