package asm

import (
	"errors"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// joinErrors is a thin wrapper over errors.Join so that Link and Assemble
// share one policy for combining the multiple errors a single pass can
// accumulate (spec §7: assembly fails only at the final boundary).
func joinErrors(errs []error) error {
	return errors.Join(errs...)
}

// linker.go implements the symbol tables, call-frame bookkeeping, and
// relocation pass described in spec §4.5, grounded on
// original_source/src/linker.rs. Instructions are emitted with a
// placeholder zero immediate whenever the operand is symbolic; Relocate
// resolves every placeholder against five symbol scopes, in priority order,
// and rewrites the instruction buffer in place.

// LabelType tags which symbol scope a ResolvedLabel was resolved against.
type LabelType int

const (
	LabelConstant LabelType = iota
	LabelGlobalVar
	LabelSubroutine
	LabelInnerLabel
	LabelFrameVar
)

//go:generate go run golang.org/x/tools/cmd/stringer -type LabelType -output labeltype_string.go

// ResolvedLabel records how a symbolic reference was resolved, kept as
// debug info after relocation completes.
type ResolvedLabel struct {
	InstAddr  isa.Word
	Target    string
	Value     isa.Word
	LabelType LabelType
}

// CallFrame describes a single subroutine: its code range, and the two
// label scopes (args/locals, inner labels) visible only within it.
type CallFrame struct {
	Name        string
	Start, End  isa.Word // half-open [Start, End) in CODE; End == -1 until sealed
	FrameLabels map[string]isa.Word
	InnerLabels map[string]isa.Word
	LocalsSize  isa.Word
	ArgsSize    isa.Word
}

func newCallFrame(name string, start isa.Word) *CallFrame {
	return &CallFrame{
		Name:        name,
		Start:       start,
		End:         -1,
		FrameLabels: make(map[string]isa.Word),
		InnerLabels: make(map[string]isa.Word),
	}
}

// DebugInfo is the symbol/frame information retained after linking, for
// tooling: dumps, a debugger session, and error reporting.
type DebugInfo struct {
	CallFrames       map[string]*CallFrame
	FrameNameForInst map[int]string
	ResolvedLabels   map[int]ResolvedLabel
}

// defaultEntryLabel is synthesized when a frame-scoped operation runs
// before any subroutine label has been declared.
const defaultEntryLabel = "_entry"

// Linker owns the instruction buffer, every symbol table, and the
// relocation table for a single assembly input. It is not re-entrant: once
// Link returns, its tables are considered consumed.
type Linker struct {
	enc *isa.Encoder

	instructions     []isa.Inst
	callFrames       map[string]*CallFrame
	frameNameForInst map[int]string
	curFrameName     string

	globalVars map[string]isa.Word
	constants  map[string]isa.Word

	relocTab       map[int]string
	resolvedLabels map[int]ResolvedLabel

	errs []error

	log *nlog.Logger
}

// NewLinker allocates an empty Linker. Callers must call Init before
// emitting any instructions, to seed the well-known globals and constants.
func NewLinker(log *nlog.Logger) *Linker {
	if log == nil {
		log = nlog.DefaultLogger()
	}

	return &Linker{
		enc:              isa.NewEncoder(),
		callFrames:       make(map[string]*CallFrame),
		frameNameForInst: make(map[int]string),
		globalVars:       make(map[string]isa.Word),
		constants:        make(map[string]isa.Word),
		relocTab:         make(map[int]string),
		resolvedLabels:   make(map[int]ResolvedLabel),
		log:              log,
	}
}

// Init seeds the globals pc/sp/fp, the retval constant, and one
// "callcode.<name>" constant per environment call, per spec §4.5.
func (l *Linker) Init(envCallNames []string) {
	l.AddGlobalVar("pc", isa.Word(isa.PC))
	l.AddGlobalVar("sp", isa.Word(isa.SP))
	l.AddGlobalVar("fp", isa.Word(isa.FP))
	l.AddConstant("retval", -3)

	for code, name := range envCallNames {
		l.AddConstant("callcode."+name, isa.Word(code))
	}
}

func (l *Linker) nextInstLoc() int {
	return len(l.instructions)
}

func (l *Linker) nextInstAddr() isa.Word {
	return isa.CODE.Start + isa.Word(l.nextInstLoc())
}

// AddInst encodes and appends an instruction at the next CODE address. An
// unknown mnemonic is recorded as a NoSuchOp error; an invalid-opcode
// placeholder is still appended so later addresses remain stable.
func (l *Linker) AddInst(name string, arg isa.Word) {
	addr := l.nextInstAddr()
	l.frameNameForInst[int(addr)] = l.curFrameNameOrEntry()

	inst, ok := l.enc.MakeInst(name, arg)
	if !ok {
		l.errs = append(l.errs, &LinkError{Kind: NoSuchOp{Addr: addr, Name: name}})
		inst = isa.Inst{Opcode: isa.OpInvalid, Name: "invald", Arg: arg}
	}

	l.instructions = append(l.instructions, inst.WithAddr(addr))
}

// AddPlaceholderInst records a pending relocation at the next instruction's
// location, then emits the instruction with a zero immediate.
func (l *Linker) AddPlaceholderInst(name, target string) {
	l.relocTab[l.nextInstLoc()] = target
	l.AddInst(name, 0)
}

// curFrameNameOrEntry returns the current frame's name, synthesizing the
// default entry frame (and recording an error) if none has been opened yet.
// It does not mutate curFrameName directly; AddSubroutineLabel is the only
// place that does.
func (l *Linker) curFrameNameOrEntry() string {
	if l.curFrameName != "" {
		return l.curFrameName
	}

	l.errs = append(l.errs, &LinkError{Kind: NeedToDefineEntryLabel{}})
	l.AddSubroutineLabel(defaultEntryLabel)

	return l.curFrameName
}

// curFrame returns the current call frame, synthesizing the entry frame
// first if necessary.
func (l *Linker) curFrame() *CallFrame {
	name := l.curFrameNameOrEntry()
	return l.callFrames[name]
}

// AddSubroutineLabel closes the previous frame's address range (if any) and
// opens a new one at the current address.
func (l *Linker) AddSubroutineLabel(name string) {
	next := l.nextInstAddr()

	if l.curFrameName != "" {
		l.callFrames[l.curFrameName].End = next
	}

	l.callFrames[name] = newCallFrame(name, next)
	l.curFrameName = name
}

// AddInnerLabel maps name to the current address within the current frame.
func (l *Linker) AddInnerLabel(name string) {
	addr := l.nextInstAddr()
	l.curFrame().InnerLabels[name] = addr
}

// AddGlobalVar maps name to an absolute address in the global symbol scope.
func (l *Linker) AddGlobalVar(name string, addr isa.Word) {
	l.globalVars[name] = addr
}

// AddConstant maps name to a literal value in the global constant scope.
func (l *Linker) AddConstant(name string, value isa.Word) {
	l.constants[name] = value
}

// AddLocalVar declares a size-word local in the current frame: its frame
// offset is the frame's running locals_size, which then grows by size.
func (l *Linker) AddLocalVar(name string, size isa.Word) {
	frame := l.curFrame()
	frame.FrameLabels[name] = frame.LocalsSize
	frame.LocalsSize += size
}

// AddArgVar declares a size-word argument in the current frame. Argument
// offsets are negative and count down from -4 (below the saved FP, return
// address, and retval slots), per spec §3's stack layout.
func (l *Linker) AddArgVar(name string, size isa.Word) {
	frame := l.curFrame()
	frame.FrameLabels[name] = -frame.ArgsSize - 4
	frame.ArgsSize += size
}

// SetRetvalName aliases name to the fixed retval slot (FP-3) within the
// current frame, so the subroutine body can refer to its return value by a
// mnemonic name instead of the constant offset.
func (l *Linker) SetRetvalName(name string) {
	l.curFrame().FrameLabels[name] = -3
}

// LocalsAlloc emits the prologue's stack-growth instruction, if the current
// frame declared any locals.
func (l *Linker) LocalsAlloc() {
	if sz := l.curFrame().LocalsSize; sz > 0 {
		l.AddInst("addsp", sz)
	}
}

// LocalsFree emits the epilogue's stack-shrink instruction, if the current
// frame declared any locals.
func (l *Linker) LocalsFree() {
	if sz := l.curFrame().LocalsSize; sz > 0 {
		l.AddInst("addsp", -sz)
	}
}

// Finish seals the last open frame's address range. Call once after the
// whole input has been parsed.
func (l *Linker) Finish() {
	if l.curFrameName != "" {
		l.callFrames[l.curFrameName].End = l.nextInstAddr()
	}
}

// calcInstOffset computes the PC-relative offset the fetch loop expects: the
// jump/jal/branch opcodes add this to PC, and PC is incremented by one after
// every instruction regardless of whether it branched, so the stored offset
// is target - instAddr - 1.
func calcInstOffset(targetAddr, instAddr isa.Word) isa.Word {
	return targetAddr - instAddr - 1
}

// resolveLabel resolves target against the five symbol scopes, in the
// priority order fixed by spec §4.5: constants, subroutine labels, globals,
// inner labels of the owning frame, then frame (arg/local) labels of the
// owning frame.
func (l *Linker) resolveLabel(instLoc int, target string) (ResolvedLabel, bool) {
	instAddr := isa.CODE.Start + isa.Word(instLoc)

	if value, ok := l.constants[target]; ok {
		return ResolvedLabel{InstAddr: instAddr, Target: target, Value: value, LabelType: LabelConstant}, true
	}

	if frame, ok := l.callFrames[target]; ok {
		value := calcInstOffset(frame.Start, instAddr)
		return ResolvedLabel{InstAddr: instAddr, Target: target, Value: value, LabelType: LabelSubroutine}, true
	}

	if value, ok := l.globalVars[target]; ok {
		return ResolvedLabel{InstAddr: instAddr, Target: target, Value: value, LabelType: LabelGlobalVar}, true
	}

	frameName := l.frameNameForInst[int(instAddr)]

	frame, ok := l.callFrames[frameName]
	if !ok {
		return ResolvedLabel{}, false
	}

	if addr, ok := frame.InnerLabels[target]; ok {
		value := calcInstOffset(addr, instAddr)
		return ResolvedLabel{InstAddr: instAddr, Target: target, Value: value, LabelType: LabelInnerLabel}, true
	}

	if value, ok := frame.FrameLabels[target]; ok {
		return ResolvedLabel{InstAddr: instAddr, Target: target, Value: value, LabelType: LabelFrameVar}, true
	}

	return ResolvedLabel{}, false
}

// Relocate resolves every entry in the relocation table and rewrites the
// corresponding instruction's Arg in place. It is deterministic and
// idempotent: re-running it over the same tables yields the same result.
// Unresolved entries are returned as MissingTarget errors.
func (l *Linker) Relocate() []error {
	var unresolved []error

	for instLoc, target := range l.relocTab {
		resolved, ok := l.resolveLabel(instLoc, target)
		if !ok {
			unresolved = append(unresolved, &LinkError{
				Kind: MissingTarget{Inst: l.instructions[instLoc], Target: target},
			})

			continue
		}

		l.instructions[instLoc].Arg = resolved.Value
		l.resolvedLabels[int(resolved.InstAddr)] = resolved
	}

	return unresolved
}

// Link runs relocation, encodes the instruction buffer to a binary word
// array, and returns debug info. It fails if any error was recorded during
// emission (NoSuchOp, NeedToDefineEntryLabel) or relocation (MissingTarget).
func (l *Linker) Link() ([]isa.Word, *DebugInfo, error) {
	errs := append([]error(nil), l.errs...)
	errs = append(errs, l.Relocate()...)

	info := &DebugInfo{
		CallFrames:       l.callFrames,
		FrameNameForInst: l.frameNameForInst,
		ResolvedLabels:   l.resolvedLabels,
	}

	if len(errs) > 0 {
		return nil, info, joinErrors(errs)
	}

	binary := make([]isa.Word, len(l.instructions))
	for i, inst := range l.instructions {
		binary[i] = l.enc.Encode(inst)
	}

	return binary, info, nil
}
