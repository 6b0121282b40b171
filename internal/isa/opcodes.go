package isa

// opcodes.go declares the canonical, ordered list of opcode mnemonics. An
// opcode's numeric value is its index in this list; index 0 is reserved for
// the invalid/halt opcode. The order matches original_source/src/isa.rs's
// def_op_list! so that a hand-assembled binary agrees with this
// implementation bit for bit.
var OpNames = []string{
	"invald",
	"push", "addsp",
	"add", "sub", "mul", "div", "rem", "and", "or", "xor", "sar", "shl", "shr",
	"addi", "subi", "muli", "divi", "remi", "andi", "ori", "xori", "sari", "shli", "shri",
	"beq", "bne", "blt", "bge", "bgt", "ble",
	"load", "store", "loadi", "storei", "loadf", "storef", "loadr", "storer",
	"jump", "jal", "ret",
	"ecall", "ebreak",
}

// OpInvalid is the reserved invalid/halt opcode, always index 0.
const OpInvalid = 0
