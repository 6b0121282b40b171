package isa

import "fmt"

// Inst is a decoded (or not-yet-encoded) instruction: an opcode paired with
// a sign-extended 24-bit immediate. Addr, when set, is the CODE address the
// instruction was fetched from or assembled at; it is diagnostic only and
// is excluded from the encode/decode round-trip law.
type Inst struct {
	Opcode byte
	Name   string
	Arg    Word
	Addr   *Word
}

func (i Inst) String() string {
	addr := ""
	if i.Addr != nil {
		addr = fmt.Sprintf("%06x ", uint32(*i.Addr))
	}

	return fmt.Sprintf("%s%-6s %6x [%4d]", addr, i.Name, uint32(i.Arg)&0xffffff, i.Arg)
}

// WithAddr returns a copy of the instruction annotated with a CODE address.
func (i Inst) WithAddr(addr Word) Inst {
	i.Addr = &addr
	return i
}
