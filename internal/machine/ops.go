package machine

import "github.com/mitchelljustin/nais-sub000/internal/isa"

// ops.go implements the opcode functions dispatched each cycle, grounded on
// original_source/src/isa.rs's op function bodies. Per spec §9's design
// note, dispatch is a fixed table keyed by opcode byte rather than the
// teacher's operation-interface pipeline (Decode/EvalAddress/FetchOperands/
// Execute/Writeback): this domain's opcodes are single-step, so the extra
// stages would have no work to do.

type opFunc func(m *Machine, arg isa.Word)

// dispatchTable maps an opcode byte to its handler, built from isa.OpNames
// so the table and the encoder never drift apart.
var dispatchTable = buildDispatchTable()

func buildDispatchTable() map[byte]opFunc {
	handlers := map[string]opFunc{
		"invald": opInvald,
		"push":   opPush,
		"addsp":  opAddsp,

		"add": binaryOp(func(a, b int64) int64 { return a + b }),
		"sub": binaryOp(func(a, b int64) int64 { return a - b }),
		"mul": binaryOp(func(a, b int64) int64 { return a * b }),
		"div": binaryDivOp(func(a, b int64) int64 { return a / b }),
		"rem": binaryDivOp(func(a, b int64) int64 { return a % b }),
		"and": binaryOp(func(a, b int64) int64 { return a & b }),
		"or":  binaryOp(func(a, b int64) int64 { return a | b }),
		"xor": binaryOp(func(a, b int64) int64 { return a ^ b }),

		"addi": immediateOp(func(a, b int64) int64 { return a + b }),
		"subi": immediateOp(func(a, b int64) int64 { return a - b }),
		"muli": immediateOp(func(a, b int64) int64 { return a * b }),
		"divi": immediateDivOp(func(a, b int64) int64 { return a / b }),
		"remi": immediateDivOp(func(a, b int64) int64 { return a % b }),
		"andi": immediateOp(func(a, b int64) int64 { return a & b }),
		"ori":  immediateOp(func(a, b int64) int64 { return a | b }),
		"xori": immediateOp(func(a, b int64) int64 { return a ^ b }),

		"sar":  opSar,
		"sari": opSari,
		"shl":  logicalShiftOp(func(v, n uint32) uint32 { return v << (n & 31) }),
		"shr":  logicalShiftOp(func(v, n uint32) uint32 { return v >> (n & 31) }),
		"shli": logicalShiftImmOp(func(v, n uint32) uint32 { return v << (n & 31) }),
		"shri": logicalShiftImmOp(func(v, n uint32) uint32 { return v >> (n & 31) }),

		"beq": branchOp(func(second, top isa.Word) bool { return second == top }),
		"bne": branchOp(func(second, top isa.Word) bool { return second != top }),
		"blt": branchOp(func(second, top isa.Word) bool { return second < top }),
		"bge": branchOp(func(second, top isa.Word) bool { return second >= top }),
		"bgt": branchOp(func(second, top isa.Word) bool { return second > top }),
		"ble": branchOp(func(second, top isa.Word) bool { return second <= top }),

		"load":   opLoad,
		"store":  opStore,
		"loadi":  opLoadi,
		"storei": opStorei,
		"loadf":  opLoadf,
		"storef": opStoref,
		"loadr":  opLoadr,
		"storer": opStorer,

		"jump": opJump,
		"jal":  opJal,
		"ret":  opRet,

		"ecall":  opEcall,
		"ebreak": opEbreak,
	}

	table := make(map[byte]opFunc, len(isa.OpNames))

	for i, name := range isa.OpNames {
		fn, ok := handlers[name]
		if !ok {
			fn = opInvald
		}

		table[byte(i)] = fn
	}

	return table
}

func opInvald(m *Machine, _ isa.Word) {
	m.fault(&Error{Kind: InvalidInstruction})
}

func opPush(m *Machine, arg isa.Word) {
	_ = m.push(arg)
}

func opAddsp(m *Machine, delta isa.Word) {
	_ = m.setsp(m.getsp() + delta)
}

// trunc32 mirrors original_source's with_overflow! macro: carry the
// operation in a 64-bit intermediate, then truncate to the low 32 bits.
func trunc32(v int64) isa.Word {
	return isa.Word(int32(v))
}

// binaryOp builds a two-pop arithmetic/bitwise opcode: pop top, pop second,
// push (second OP top) OP arg, each application truncated through a 64-bit
// intermediate (spec §4.3, §9).
func binaryOp(op func(a, b int64) int64) opFunc {
	return func(m *Machine, arg isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		second, err := m.pop()
		if err != nil {
			return
		}

		step1 := trunc32(op(int64(second), int64(top)))
		step2 := trunc32(op(int64(step1), int64(arg)))

		_ = m.push(step2)
	}
}

// binaryDivOp is binaryOp specialized for div/rem, which fault on a zero
// divisor instead of wrapping. The closed runtime error enum (spec §7) has
// no dedicated kind for this, so it is reported as InvalidInstruction.
func binaryDivOp(op func(a, b int64) int64) opFunc {
	return func(m *Machine, arg isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		second, err := m.pop()
		if err != nil {
			return
		}

		if top == 0 {
			m.fault(&Error{Kind: InvalidInstruction})
			return
		}

		step1 := trunc32(op(int64(second), int64(top)))

		if arg == 0 {
			m.fault(&Error{Kind: InvalidInstruction})
			return
		}

		step2 := trunc32(op(int64(step1), int64(arg)))

		_ = m.push(step2)
	}
}

// immediateOp builds a one-pop arithmetic/bitwise opcode: pop top, push
// top OP arg.
func immediateOp(op func(a, b int64) int64) opFunc {
	return func(m *Machine, arg isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		_ = m.push(trunc32(op(int64(top), int64(arg))))
	}
}

func immediateDivOp(op func(a, b int64) int64) opFunc {
	return func(m *Machine, arg isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		if arg == 0 {
			m.fault(&Error{Kind: InvalidInstruction})
			return
		}

		_ = m.push(trunc32(op(int64(top), int64(arg))))
	}
}

// opSar and opSari are arithmetic (sign-preserving) right shifts; unlike the
// other binary ops, the instruction's own arg is unused for the two-pop
// form (original_source/src/isa.rs's sar ignores its imm parameter too).
func opSar(m *Machine, _ isa.Word) {
	shamt, err := m.pop()
	if err != nil {
		return
	}

	val, err := m.pop()
	if err != nil {
		return
	}

	_ = m.push(val >> (uint32(shamt) & 31))
}

func opSari(m *Machine, shamt isa.Word) {
	val, err := m.pop()
	if err != nil {
		return
	}

	_ = m.push(val >> (uint32(shamt) & 31))
}

// logicalShiftOp builds the two-pop shl/shr forms: pop shamt, pop val, push
// the logical (unsigned) shift of val by shamt. The arg is unused, matching
// the two-pop arithmetic shift.
func logicalShiftOp(shift func(v, n uint32) uint32) opFunc {
	return func(m *Machine, _ isa.Word) {
		shamt, err := m.pop()
		if err != nil {
			return
		}

		val, err := m.pop()
		if err != nil {
			return
		}

		result := shift(uint32(val), uint32(shamt))
		_ = m.push(isa.Word(int32(result)))
	}
}

func logicalShiftImmOp(shift func(v, n uint32) uint32) opFunc {
	return func(m *Machine, arg isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		result := shift(uint32(top), uint32(arg))
		_ = m.push(isa.Word(int32(result)))
	}
}

func opLoadi(m *Machine, addr isa.Word) {
	val, err := m.unsafeLoad(addr)
	if err != nil {
		return
	}

	_ = m.push(val)
}

func opStorei(m *Machine, addr isa.Word) {
	val, err := m.pop()
	if err != nil {
		return
	}

	_ = m.unsafeStore(addr, val)
}

func opLoad(m *Machine, offset isa.Word) {
	addr, err := m.pop()
	if err != nil {
		return
	}

	val, err := m.unsafeLoad(addr + offset)
	if err != nil {
		return
	}

	_ = m.push(val)
}

func opStore(m *Machine, offset isa.Word) {
	addr, err := m.pop()
	if err != nil {
		return
	}

	val, err := m.pop()
	if err != nil {
		return
	}

	_ = m.unsafeStore(addr+offset, val)
}

func opLoadf(m *Machine, offset isa.Word) {
	fp := m.getfp()

	val, err := m.stackLoad(fp + offset)
	if err != nil {
		return
	}

	_ = m.push(val)
}

func opStoref(m *Machine, offset isa.Word) {
	fp := m.getfp()

	val, err := m.pop()
	if err != nil {
		return
	}

	_ = m.stackStore(fp+offset, val)
}

func opLoadr(m *Machine, offset isa.Word) {
	opLoadi(m, m.getpc()+offset)
}

func opStorer(m *Machine, offset isa.Word) {
	opStorei(m, m.getpc()+offset)
}

// opJump moves PC by offset. The fetch loop adds one afterwards, so only the
// landing address newpc+1 has to lie in CODE; newpc itself may sit one word
// below CODE.Start (a jump to the first instruction).
func opJump(m *Machine, offset isa.Word) {
	newpc := m.getpc() + offset
	if !isa.CODE.Contains(newpc + 1) {
		m.fault(&Error{Kind: ImminentPCSegFault, NewPC: newpc + 1})
		return
	}

	m.mem[isa.PC] = newpc
}

func opJal(m *Machine, offset isa.Word) {
	pc := m.getpc()

	if err := m.push(pc); err != nil {
		return
	}

	_ = m.setpc(pc + offset)
}

func opRet(m *Machine, _ isa.Word) {
	addr, err := m.pop()
	if err != nil {
		return
	}

	_ = m.setpc(addr)
}

// branchOp builds a two-pop comparison: pop top, pop second; if
// second CMP top, jump by arg.
func branchOp(cmp func(second, top isa.Word) bool) opFunc {
	return func(m *Machine, offset isa.Word) {
		top, err := m.pop()
		if err != nil {
			return
		}

		second, err := m.pop()
		if err != nil {
			return
		}

		if cmp(second, top) {
			opJump(m, offset)
		}
	}
}

func opEcall(m *Machine, callcode isa.Word) {
	if callcode < 0 || int(callcode) >= len(envCallList) {
		m.fault(&Error{Kind: NoSuchEnvCall, CallCode: callcode})
		return
	}

	retval := envCallList[callcode](m)

	_ = m.push(isa.Word(retval))
}

func opEbreak(m *Machine, _ isa.Word) {
	m.status = Status{Kind: Debugging}
}
