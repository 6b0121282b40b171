package isa_test

import (
	"testing"

	. "github.com/mitchelljustin/nais-sub000/internal/isa"
)

func TestEncoder_RoundTrip(t *testing.T) {
	enc := NewEncoder()

	tests := []struct {
		name string
		op   string
		arg  Word
	}{
		{"push positive", "push", 42},
		{"push negative", "push", -1},
		{"push zero", "push", 0},
		{"jump offset", "jump", -5},
		{"ecall", "ecall", 4},
		{"storef large offset", "storef", 0x7fffff},
		{"storef min offset", "storef", -0x800000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, ok := enc.MakeInst(tt.op, tt.arg)
			if !ok {
				t.Fatalf("MakeInst(%q, %d): not ok", tt.op, tt.arg)
			}

			word := enc.Encode(inst)

			decoded, ok := enc.Decode(word)
			if !ok {
				t.Fatalf("Decode(%#x): not ok", uint32(word))
			}

			if decoded.Opcode != inst.Opcode || decoded.Arg != inst.Arg || decoded.Name != inst.Name {
				t.Errorf("decode(encode(i)) = %+v, want %+v", decoded, inst)
			}
		})
	}
}

func TestEncoder_MakeInst_UnknownMnemonic(t *testing.T) {
	enc := NewEncoder()

	if _, ok := enc.MakeInst("frobnicate", 0); ok {
		t.Error("MakeInst(unknown mnemonic): expected not ok")
	}
}

func TestEncoder_Decode_UnknownOpcode(t *testing.T) {
	enc := NewEncoder()

	// Opcode 0xff has no mapped mnemonic in OpNames.
	word := Word(-1 << 24) // 0xff000000

	if _, ok := enc.Decode(word); ok {
		t.Error("Decode(unmapped opcode): expected not ok")
	}
}

func TestEncoder_SignExtension(t *testing.T) {
	enc := NewEncoder()

	// A 24-bit immediate with bit 23 set decodes to a negative i32 whose
	// low 24 bits equal the original.
	word := Word((int32(1) << 24) | 0x00800001) // opcode 1 ("push"), arg bit 23 + bit 0 set

	inst, ok := enc.Decode(word)
	if !ok {
		t.Fatal("Decode: not ok")
	}

	if inst.Arg >= 0 {
		t.Fatalf("Arg = %d, want negative", inst.Arg)
	}

	if int32(inst.Arg)&0x00ffffff != 0x00800001 {
		t.Errorf("low 24 bits = %#x, want %#x", int32(inst.Arg)&0x00ffffff, 0x00800001)
	}
}

func TestEncoder_Encode_Layout(t *testing.T) {
	enc := NewEncoder()

	inst, ok := enc.MakeInst("push", 7)
	if !ok {
		t.Fatal("MakeInst: not ok")
	}

	word := enc.Encode(inst)

	wantOpcode := byte(1) // "push" is index 1 in OpNames
	if gotOpcode := byte(uint32(word) >> 24); gotOpcode != wantOpcode {
		t.Errorf("opcode = %d, want %d", gotOpcode, wantOpcode)
	}

	if gotArg := int32(word) & 0x00ffffff; gotArg != 7 {
		t.Errorf("arg = %d, want 7", gotArg)
	}
}
