package asm

import (
	"fmt"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

// errors.go declares the assembly-time error taxonomy (spec §7). Errors are
// collected during parsing and linking rather than returned immediately, so
// that later addresses and subsequent error messages stay meaningful; the
// pass only fails at the final boundary, when Assemble joins everything
// collected with errors.Join. Grounded on original_source/src/assembler.rs's
// ParserError and src/linker.rs's LinkerError enums.

// IOError reports that the assembly source could not be fully read; it is
// recorded instead of the line-scoped ParseErrorKinds since it has no
// associated line number.
type IOError struct{ Err error }

func (e *IOError) Error() string { return fmt.Sprintf("IOError: %s", e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ParseError is a syntax-level failure recorded against a source line.
type ParseError struct {
	Line int
	Kind ParseErrorKind
}

// ParseErrorKind enumerates the ways a line of assembly can fail to parse.
type ParseErrorKind interface {
	parseErrorKind()
	fmt.Stringer
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
}

// UnknownMacro reports a directive verb (a "." token) with no registered
// handler.
type UnknownMacro struct{ Verb string }

func (UnknownMacro) parseErrorKind() {}
func (e UnknownMacro) String() string { return fmt.Sprintf("UnknownMacro{%s}", e.Verb) }

// WrongNumberOfArguments reports a directive invoked outside its accepted
// argument-count range.
type WrongNumberOfArguments struct {
	Verb     string
	Min, Max int
	Actual   int
}

func (WrongNumberOfArguments) parseErrorKind() {}
func (e WrongNumberOfArguments) String() string {
	return fmt.Sprintf("WrongNumberOfArguments{%s expected=%d..%d actual=%d}", e.Verb, e.Min, e.Max, e.Actual)
}

// InvalidIntegerArg reports a numeric literal operand that failed to parse.
type InvalidIntegerArg struct {
	Text string
	Err  error
}

func (InvalidIntegerArg) parseErrorKind() {}
func (e InvalidIntegerArg) String() string {
	return fmt.Sprintf("InvalidIntegerArg{%q: %s}", e.Text, e.Err)
}

// OnlyAsciiCharsSupported reports a quoted-character literal outside ASCII.
type OnlyAsciiCharsSupported struct{ Char string }

func (OnlyAsciiCharsSupported) parseErrorKind() {}
func (e OnlyAsciiCharsSupported) String() string {
	return fmt.Sprintf("OnlyAsciiCharsSupported{%s}", e.Char)
}

// InstHasMultipleArgs reports an instruction line with more than one operand.
type InstHasMultipleArgs struct {
	Verb string
	Args []string
}

func (InstHasMultipleArgs) parseErrorKind() {}
func (e InstHasMultipleArgs) String() string {
	return fmt.Sprintf("InstHasMultipleArgs{%s %v}", e.Verb, e.Args)
}

// LinkError is a failure raised by the Linker itself rather than the line
// parser: an unknown mnemonic, a frame-scoped op before any label, or an
// unresolved symbolic reference discovered during relocation.
type LinkError struct {
	Kind LinkErrorKind
}

func (e *LinkError) Error() string { return e.Kind.String() }

type LinkErrorKind interface {
	linkErrorKind()
	fmt.Stringer
}

// NeedToDefineEntryLabel reports a frame-scoped operation (an instruction or
// directive) encountered before any subroutine label; the linker synthesizes
// a default "_entry" frame to keep addresses stable.
type NeedToDefineEntryLabel struct{}

func (NeedToDefineEntryLabel) linkErrorKind() {}
func (NeedToDefineEntryLabel) String() string { return "NeedToDefineEntryLabel" }

// NoSuchOp reports an instruction mnemonic absent from the opcode table.
type NoSuchOp struct {
	Addr isa.Word
	Name string
}

func (NoSuchOp) linkErrorKind() {}
func (e NoSuchOp) String() string { return fmt.Sprintf("NoSuchOp(%s, %q)", e.Addr, e.Name) }

// MissingTarget reports a relocation-table entry whose target name resolved
// against no symbol scope.
type MissingTarget struct {
	Inst   isa.Inst
	Target string
}

func (MissingTarget) linkErrorKind() {}
func (e MissingTarget) String() string {
	return fmt.Sprintf("MissingTarget(%s, %q)", e.Inst, e.Target)
}
