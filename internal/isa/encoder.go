package isa

// encoder.go implements the 32-bit instruction encoding: word = (opcode <<
// 24) | (arg & 0x00ffffff), with the low 24 bits of arg sign-extended on
// decode. Grounded on original_source/src/encoder.rs.

// Encoder holds the opcode<->mnemonic tables derived from OpNames.
type Encoder struct {
	nameToOpcode map[string]byte
	opcodeToName map[byte]string
}

// NewEncoder builds an Encoder from the canonical opcode list.
func NewEncoder() *Encoder {
	enc := &Encoder{
		nameToOpcode: make(map[string]byte, len(OpNames)),
		opcodeToName: make(map[byte]string, len(OpNames)),
	}

	for i, name := range OpNames {
		opcode := byte(i)
		enc.nameToOpcode[name] = opcode
		enc.opcodeToName[opcode] = name
	}

	return enc
}

// MakeInst builds an instruction for the named mnemonic. It reports false
// when the mnemonic is unknown.
func (e *Encoder) MakeInst(name string, arg Word) (Inst, bool) {
	opcode, ok := e.nameToOpcode[name]
	if !ok {
		return Inst{}, false
	}

	return Inst{Opcode: opcode, Name: name, Arg: arg}, true
}

// Encode packs an instruction into its 32-bit word representation.
func (e *Encoder) Encode(inst Inst) Word {
	argPart := int32(inst.Arg) & 0x00ffffff
	return Word((int32(inst.Opcode) << 24) | argPart)
}

// Decode unpacks a 32-bit word into an instruction, sign-extending the
// immediate when bit 23 is set. It reports false when the opcode byte has
// no mapped mnemonic.
func (e *Encoder) Decode(word Word) (Inst, bool) {
	opcode := byte((int32(word) >> 24) & 0xff)

	arg := int32(word) & 0x00ffffff
	if arg&0x00800000 != 0 {
		arg |= ^int32(0x00ffffff) // sign extend
	}

	name, ok := e.opcodeToName[opcode]
	if !ok {
		return Inst{}, false
	}

	return Inst{Opcode: opcode, Name: name, Arg: Word(arg)}, true
}
