package domain

import "errors"

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("domain: not found")
