// Package gberr defines the error kinds shared across the emulator core.
//
// Every fallible core operation returns one of these wrapped with extra
// context via fmt.Errorf("%w: ...", Kind). Callers use errors.Is against the
// sentinels below to distinguish, e.g., an address error from a bad opcode.
package gberr

import "errors"

// Sentinel kinds, one per failure class the core can report.
var (
	ErrBadParameter  = errors.New("bad parameter")
	ErrMem           = errors.New("memory allocation failure")
	ErrAddress       = errors.New("address error")
	ErrIO            = errors.New("io error")
	ErrNotImplemented = errors.New("not implemented")
	ErrInstr         = errors.New("unknown instruction")
)
