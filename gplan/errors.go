package gplan

import "errors"

// Errors
var (
	ErrInvariantViolation = errors.New("pattern invariant violation")
	ErrBadCatalogParam    = errors.New("bad catalog param")
	ErrCatalogReadOnly    = errors.New("catalog is read-only")
	ErrUnmarshal          = errors.New("unmarshal failed")
	ErrBadConfig          = errors.New("bad config")
	ErrNilPattern         = errors.New("nil pattern")
)
