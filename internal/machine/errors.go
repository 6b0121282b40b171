package machine

// errors.go defines the runtime error taxonomy (spec §7). Every error halts
// the fetch/execute loop by becoming the machine's terminal status, after
// original_source/src/machine.rs's MachineError enum, using the teacher's
// sentinel-plus-struct idiom (see smoynes-elsie/internal/vm/mem.go's
// MemoryError/ErrMemory).

import (
	"errors"
	"fmt"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

// ErrRuntime is the sentinel every *Error wraps; test with errors.Is.
var ErrRuntime = errors.New("runtime error")

// ErrorKind enumerates the ways the fetch/execute loop can fault.
type ErrorKind int

//go:generate go run golang.org/x/tools/cmd/stringer -type ErrorKind -output errorkind_string.go

const (
	IllegalSPReductionBelowMin ErrorKind = iota
	IllegalDirectWriteSP
	IllegalDirectWritePC
	ImminentPCSegFault
	InvalidInstruction
	CannotDecodeInst
	StackAccessBeyondSP
	StackAccessSegFault
	CodeAccessSegFault
	ProgramExit
	NoSuchEnvCall
	LoadAddressOutOfBounds
	StoreAddressOutOfBounds
	MaxCyclesReached
)

// Error is a runtime fault. Fields relevant to the Kind are populated; the
// rest are zero.
type Error struct {
	Kind ErrorKind

	Addr     isa.Word // offending address, for the *-SegFault/*-OutOfBounds kinds
	SP       isa.Word // current SP, for StackAccessBeyondSP
	NewSP    isa.Word // attempted SP, for IllegalSPReductionBelowMin
	NewPC    isa.Word // attempted PC, for ImminentPCSegFault
	Code     isa.Word // exit status, for ProgramExit
	CallCode isa.Word // env-call index, for NoSuchEnvCall
	Word     isa.Word // undecodable word, for CannotDecodeInst
}

func (e *Error) Error() string {
	switch e.Kind {
	case IllegalSPReductionBelowMin:
		return fmt.Sprintf("%s: newsp=%s", e.Kind, e.NewSP)
	case IllegalDirectWriteSP, IllegalDirectWritePC:
		return e.Kind.String()
	case ImminentPCSegFault:
		return fmt.Sprintf("%s: newpc=%s", e.Kind, e.NewPC)
	case InvalidInstruction:
		return e.Kind.String()
	case CannotDecodeInst:
		return fmt.Sprintf("%s: word=%s", e.Kind, e.Word)
	case StackAccessBeyondSP:
		return fmt.Sprintf("%s: sp=%s addr=%s", e.Kind, e.SP, e.Addr)
	case StackAccessSegFault, CodeAccessSegFault:
		return fmt.Sprintf("%s: addr=%s", e.Kind, e.Addr)
	case ProgramExit:
		return fmt.Sprintf("%s: code=%d", e.Kind, e.Code)
	case NoSuchEnvCall:
		return fmt.Sprintf("%s: callcode=%d", e.Kind, e.CallCode)
	case LoadAddressOutOfBounds, StoreAddressOutOfBounds:
		return fmt.Sprintf("%s: addr=%s", e.Kind, e.Addr)
	case MaxCyclesReached:
		return e.Kind.String()
	default:
		return fmt.Sprintf("unknown runtime error kind %d", e.Kind)
	}
}

// Is reports whether target is the shared ErrRuntime sentinel, letting
// callers test the error class without inspecting Kind.
func (e *Error) Is(target error) bool {
	return target == ErrRuntime //nolint:errorlint
}
