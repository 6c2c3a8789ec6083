package main

import "github.com/pkg/errors"

// Compilation of a class stops at the first of these; callers discard whatever
// output was produced for that class.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrNoToken         = errors.New("no current token")
)
