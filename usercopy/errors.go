package usercopy

import (
	"errors"
	"fmt"
)

// ErrFault is the single failure signal of the copy routines. Every error
// returned by CopyIn and CopyInString matches it with errors.Is.
var ErrFault = errors.New("bad user address")

var (
	// ErrOutOfRange means the requested range lies outside the address space
	// of the process or overflows the address width.
	ErrOutOfRange = fmt.Errorf("%w: range outside address space", ErrFault)

	// ErrUnmappedPage means a page in the requested range has no physical
	// mapping.
	ErrUnmappedPage = fmt.Errorf("%w: page not mapped", ErrFault)

	// ErrUnterminated means the byte budget of a string copy ran out before
	// a NUL terminator was found.
	ErrUnterminated = fmt.Errorf("%w: string not terminated", ErrFault)
)
