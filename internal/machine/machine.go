// Package machine implements the stack-machine runtime: the fetch/dispatch
// loop, the opcode functions, the environment-call trampoline, and the
// debugger hook. It is one package, after smoynes-elsie/internal/vm, because
// the CPU loop, its instruction functions, and its I/O devices are too
// tightly coupled to split without an import cycle.
package machine

import (
	"context"
	"fmt"

	"github.com/mitchelljustin/nais-sub000/internal/asm"
	"github.com/mitchelljustin/nais-sub000/internal/isa"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// StatusKind is the tag of the machine's current Status.
type StatusKind int

const (
	Idle StatusKind = iota
	Running
	Debugging
	Stopped
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Debugging:
		return "Debugging"
	case Stopped:
		return "Stopped"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// Status is the machine's tagged run state. Err is populated only when Kind
// is StatusError.
type Status struct {
	Kind StatusKind
	Err  *Error
}

func (s Status) String() string {
	if s.Kind == StatusError && s.Err != nil {
		return fmt.Sprintf("Error(%s)", s.Err)
	}

	return s.Kind.String()
}

// Running reports whether the fetch/execute loop should keep cycling in
// this status.
func (s Status) Running() bool {
	return s.Kind == Running || s.Kind == Debugging
}

// Machine is the stack-machine interpreter: memory, status, cycle budget,
// encoder, debug info, and the environment-call trampoline.
type Machine struct {
	mem    []isa.Word
	status Status
	cycles uint64

	maxCycles      uint64
	enableDebugger bool
	debugger       Debugger
	debuggerHook   func(*Machine)

	enc *isa.Encoder
	env *Environment

	debugInfo *asm.DebugInfo

	log *nlog.Logger
}

// OptionFn configures a Machine at construction time.
type OptionFn func(*Machine)

// WithMaxCycles bounds the number of fetch/execute cycles Run will perform
// before forcing MaxCyclesReached. Zero (the default) means unbounded.
func WithMaxCycles(n uint64) OptionFn {
	return func(m *Machine) { m.maxCycles = n }
}

// WithDebugger enables the debugger and installs the interactive
// collaborator consulted whenever status is Debugging.
func WithDebugger(d Debugger) OptionFn {
	return func(m *Machine) {
		m.enableDebugger = true
		m.debugger = d
	}
}

// WithDebuggerHook installs a callback invoked once per cycle while status
// is Debugging, after the debugger's own interaction. Mainly useful in
// tests that want to observe mid-run state without a real REPL.
func WithDebuggerHook(fn func(*Machine)) OptionFn {
	return func(m *Machine) { m.debuggerHook = fn }
}

// WithLogger overrides the machine's logger; the default is nlog.DefaultLogger.
func WithLogger(l *nlog.Logger) OptionFn {
	return func(m *Machine) { m.log = l }
}

// New allocates a machine with memory sized to the whole address space and
// PC/SP/FP/BOUNDARY initialized per the segment layout in internal/isa.
func New(opts ...OptionFn) *Machine {
	m := &Machine{
		mem:      make([]isa.Word, isa.TotalWords()),
		status:   Status{Kind: Idle},
		enc:      isa.NewEncoder(),
		debugger: NopDebugger{},
		log:      nlog.DefaultLogger(),
	}

	m.mem[isa.PC] = isa.Word(isa.CODE.Start)
	m.mem[isa.SP] = isa.Word(isa.INIT_SP)
	m.mem[isa.FP] = isa.Word(isa.InitFP)
	m.mem[isa.BOUNDARY] = isa.Word(isa.InitBoundary)

	m.env = newEnvironment()

	for _, fn := range opts {
		fn(m)
	}

	return m
}

// LoadCode copies a binary (one word per instruction) into CODE starting at
// its base address.
func (m *Machine) LoadCode(words []isa.Word) error {
	if isa.Word(len(words)) > isa.Word(isa.CODE.Len()) {
		return fmt.Errorf("machine: program of %d words exceeds CODE segment of %d words", len(words), isa.CODE.Len())
	}

	copy(m.mem[isa.CODE.Start:], words)

	return nil
}

// LoadDebugInfo attaches assembler debug info (call frames, resolved
// labels) for a dump or a debugger session to consult.
func (m *Machine) LoadDebugInfo(info *asm.DebugInfo) {
	m.debugInfo = info
}

// Status reports the machine's current run state.
func (m *Machine) Status() Status {
	return m.status
}

// Cycles reports the number of fetch/execute cycles completed so far.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

func (m *Machine) fault(err *Error) {
	m.status = Status{Kind: StatusError, Err: err}
}

func (m *Machine) getpc() isa.Word { return m.mem[isa.PC] }
func (m *Machine) getsp() isa.Word { return m.mem[isa.SP] }
func (m *Machine) getfp() isa.Word { return m.mem[isa.FP] }

// setpc moves the instruction pointer, refusing any target outside CODE.
func (m *Machine) setpc(newpc isa.Word) error {
	if !isa.CODE.Contains(newpc) {
		err := &Error{Kind: ImminentPCSegFault, NewPC: newpc}
		m.fault(err)

		return err
	}

	m.mem[isa.PC] = newpc

	return nil
}

// setsp moves the stack pointer, refusing to reduce it below INIT_SP.
func (m *Machine) setsp(newsp isa.Word) error {
	if newsp < isa.Word(isa.INIT_SP) {
		err := &Error{Kind: IllegalSPReductionBelowMin, NewSP: newsp}
		m.fault(err)

		return err
	}

	m.mem[isa.SP] = newsp

	return nil
}

// unsafeLoad reads a word from anywhere in the address space, bounds-checked
// against AddrSpace only. Instruction functions use it after their own
// segment-specific checks.
func (m *Machine) unsafeLoad(addr isa.Word) (isa.Word, error) {
	if !isa.AddrSpace.Contains(addr) {
		err := &Error{Kind: LoadAddressOutOfBounds, Addr: addr}
		m.fault(err)

		return 0, err
	}

	return m.mem[addr], nil
}

// unsafeStore writes a word anywhere in the address space, bounds-checked
// against AddrSpace only.
func (m *Machine) unsafeStore(addr isa.Word, val isa.Word) error {
	if !isa.AddrSpace.Contains(addr) {
		err := &Error{Kind: StoreAddressOutOfBounds, Addr: addr}
		m.fault(err)

		return err
	}

	m.mem[addr] = val

	return nil
}

// stackLoad reads a word from the live portion of STACK: addr must be both
// in the STACK segment and below the current SP.
func (m *Machine) stackLoad(addr isa.Word) (isa.Word, error) {
	if !isa.STACK.Contains(addr) {
		err := &Error{Kind: StackAccessSegFault, Addr: addr}
		m.fault(err)

		return 0, err
	}

	if addr >= m.getsp() {
		err := &Error{Kind: StackAccessBeyondSP, SP: m.getsp(), Addr: addr}
		m.fault(err)

		return 0, err
	}

	return m.mem[addr], nil
}

// stackStore writes a word into the live portion of STACK, additionally
// refusing direct writes to the PC and SP cells.
func (m *Machine) stackStore(addr isa.Word, val isa.Word) error {
	if addr == isa.Word(isa.SP) {
		err := &Error{Kind: IllegalDirectWriteSP}
		m.fault(err)

		return err
	}

	if addr == isa.Word(isa.PC) {
		err := &Error{Kind: IllegalDirectWritePC}
		m.fault(err)

		return err
	}

	if !isa.STACK.Contains(addr) {
		err := &Error{Kind: StackAccessSegFault, Addr: addr}
		m.fault(err)

		return err
	}

	if addr >= m.getsp() {
		err := &Error{Kind: StackAccessBeyondSP, SP: m.getsp(), Addr: addr}
		m.fault(err)

		return err
	}

	m.mem[addr] = val

	return nil
}

// push grows the stack by one word. Unlike stackStore, the target address is
// the first free slot (== current SP, one past the live region), so it
// checks the STACK segment directly rather than the "addr < SP" liveness
// bound that governs reads and in-place writes.
func (m *Machine) push(val isa.Word) error {
	sp := m.getsp()

	if !isa.STACK.Contains(sp) {
		err := &Error{Kind: StackAccessSegFault, Addr: sp}
		m.fault(err)

		return err
	}

	m.mem[sp] = val

	return m.setsp(sp + 1)
}

// pop shrinks the stack by one word and returns the popped value.
func (m *Machine) pop() (isa.Word, error) {
	newsp := m.getsp() - 1

	val, err := m.stackLoad(newsp)
	if err != nil {
		return 0, err
	}

	if err := m.setsp(newsp); err != nil {
		return 0, err
	}

	return val, nil
}

// Run executes cycles until status leaves {Running, Debugging} or ctx is
// cancelled. It sets status to Running on entry.
func (m *Machine) Run(ctx context.Context) error {
	m.status = Status{Kind: Running}
	m.log.Info("run: start", nlog.Any("pc", m.getpc()))

	for m.status.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.cycle()
	}

	if m.status.Kind == StatusError {
		m.log.Error("run: halted", nlog.Any("status", m.status.String()))

		if m.enableDebugger {
			m.status = Status{Kind: Debugging}
			m.debugger.Interact(m)
		}

		return m.status.Err
	}

	m.log.Info("run: halted", nlog.Any("status", m.status.String()))

	return nil
}

// Step runs exactly one cycle, for single-step debugging.
func (m *Machine) Step() error {
	m.cycle()

	if m.status.Kind == StatusError {
		return m.status.Err
	}

	return nil
}

// cycle performs one fetch/dispatch/advance iteration: decode mem[PC],
// invoke its opcode function, then advance PC by one, per spec §4.6. It
// never returns an error directly; faults are recorded as m.status.
func (m *Machine) cycle() {
	pc := m.getpc()

	if !isa.CODE.Contains(pc) {
		m.fault(&Error{Kind: CodeAccessSegFault, Addr: pc})
		return
	}

	word := m.mem[pc]

	inst, ok := m.enc.Decode(word)
	if !ok {
		m.fault(&Error{Kind: CannotDecodeInst, Word: word})
		return
	}

	fn, ok := dispatchTable[inst.Opcode]
	if !ok || fn == nil {
		m.fault(&Error{Kind: InvalidInstruction})
		return
	}

	m.log.Debug("cycle", nlog.Any("pc", pc), nlog.Any("inst", inst.String()))

	fn(m, inst.Arg)

	// fn may have moved PC itself (jump/jal/ret/taken branch); the
	// unconditional +1 lands on top of whatever it left behind, per
	// spec's target_addr - inst_addr - 1 offset convention. This runs
	// even when fn just faulted: original_source/src/machine.rs's cycle
	// calls setpc unconditionally after the opcode function, with no
	// status check in between.
	_ = m.setpc(m.getpc() + 1)

	if m.status.Kind == Debugging {
		m.debugger.Interact(m)

		if m.debuggerHook != nil {
			m.debuggerHook(m)
		}
	}

	m.cycles++

	if m.maxCycles != 0 && m.cycles >= m.maxCycles {
		m.fault(&Error{Kind: MaxCyclesReached})
	}
}
