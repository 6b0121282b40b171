// Package isa defines the machine's data model: the flat word-addressed
// memory segmentation scheme and the 32-bit instruction encoding.
package isa

import "fmt"

// Word is a signed 32-bit value: every address, operand and instruction in
// the machine is a Word. Arithmetic wraps in two's-complement; it never
// faults on overflow.
type Word int32

func (w Word) String() string {
	return fmt.Sprintf("%#08x", uint32(w))
}
