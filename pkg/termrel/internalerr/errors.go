package internalerr

import "errors"

// Sentinel errors shared across termrel packages
var (
	// ErrPrecondition marks input that breaks the pre-tokenized contract:
	// empty terms, tokens without text or lemma, empty span lists.
	ErrPrecondition  = errors.New("precondition violated")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNotFound      = errors.New("not found")
)
