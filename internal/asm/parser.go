package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// parser.go implements the line-oriented lexer described in spec §4.4,
// grounded on original_source/src/assembler.rs's process_asm_line/
// process_macro, ported to the teacher's bufio.Scanner-over-io.Reader idiom
// (smoynes-elsie/internal/asm/parser.go) instead of the original's
// read-whole-file-to-string pass.

// Parser turns assembly text into calls against a Linker, accumulating
// syntax errors rather than stopping at the first one, so that later lines
// keep producing meaningful addresses and diagnostics.
type Parser struct {
	linker *Linker

	localAddrs []string // .local_addrs names awaiting .start_frame materialization

	errs []error

	log *nlog.Logger
}

// NewParser returns a Parser that emits into linker.
func NewParser(linker *Linker, log *nlog.Logger) *Parser {
	if log == nil {
		log = nlog.DefaultLogger()
	}

	return &Parser{linker: linker, log: log}
}

// Parse reads every line of src and feeds it to the linker. It never
// returns early on a syntax error; call Err after the last Parse call (and
// after Linker.Finish) to get the combined result.
func (p *Parser) Parse(src io.Reader) {
	scanner := bufio.NewScanner(src)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		if err := p.parseLine(lineNo, scanner.Text()); err != nil {
			p.errs = append(p.errs, err)
			p.log.Debug("parse: syntax error", nlog.Any("line", lineNo), nlog.Any("err", err.Error()))
		}
	}

	if err := scanner.Err(); err != nil {
		p.errs = append(p.errs, &IOError{Err: err})
		p.log.Error("parse: source unreadable", nlog.Any("err", err.Error()))
	}
}

// Err joins every syntax error accumulated across all Parse calls.
func (p *Parser) Err() error {
	return joinErrors(p.errs)
}

// parseLine strips comments, splits on whitespace, and dispatches to a
// label, directive, or instruction form, in that precedence order (spec
// §4.4).
func (p *Parser) parseLine(lineNo int, line string) error {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	verb := fields[0]

	if strings.HasSuffix(verb, ":") {
		name := strings.TrimSuffix(verb, ":")
		if strings.HasPrefix(name, "_") {
			p.linker.AddInnerLabel(name)
		} else {
			p.linker.AddSubroutineLabel(name)
		}

		return nil
	}

	args := fields[1:]

	if strings.HasPrefix(verb, ".") {
		if err := p.processMacro(verb, args); err != nil {
			return &ParseError{Line: lineNo, Kind: err}
		}

		return nil
	}

	switch len(args) {
	case 0:
		p.linker.AddInst(verb, 0)
	case 1:
		arg, isInt, err := parseIntegerArg(args[0])
		if err != nil {
			return &ParseError{Line: lineNo, Kind: err}
		}

		if isInt {
			p.linker.AddInst(verb, arg)
		} else {
			p.linker.AddPlaceholderInst(verb, args[0])
		}
	default:
		return &ParseError{Line: lineNo, Kind: InstHasMultipleArgs{Verb: verb, Args: args}}
	}

	return nil
}

// processMacro dispatches a "." directive to its handler (spec §4.4's
// directive table).
func (p *Parser) processMacro(verb string, args []string) ParseErrorKind {
	switch verb {
	case ".define":
		if err := expectNumArgs(verb, args, 2, 2); err != nil {
			return err
		}

		value, isInt, err := parseIntegerArg(args[1])
		if err != nil {
			return err
		}

		if !isInt {
			return InvalidIntegerArg{Text: args[1], Err: fmt.Errorf("not an integer literal")}
		}

		p.linker.AddConstant(args[0], value)

	case ".args":
		if err := expectNumArgs(verb, args, 1, 10); err != nil {
			return err
		}

		for _, name := range args {
			p.linker.AddArgVar(name, 1)
		}

	case ".locals":
		if err := expectNumArgs(verb, args, 1, 10); err != nil {
			return err
		}

		for _, name := range args {
			p.linker.AddLocalVar(name, 1)
			p.linker.AddConstant(name+".len", 1)
		}

	case ".local_array":
		if err := expectNumArgs(verb, args, 2, 2); err != nil {
			return err
		}

		length, isInt, err := parseIntegerArg(args[1])
		if err != nil {
			return err
		}

		if !isInt {
			return InvalidIntegerArg{Text: args[1], Err: fmt.Errorf("not an integer literal")}
		}

		p.linker.AddLocalVar(args[0], length)
		p.linker.AddConstant(args[0]+".len", length)

	case ".local_addrs":
		if err := expectNumArgs(verb, args, 1, 10); err != nil {
			return err
		}

		for _, name := range args {
			p.linker.AddLocalVar(name+".addr", 1)
			p.localAddrs = append(p.localAddrs, name)
		}

	case ".return":
		if err := expectNumArgs(verb, args, 1, 1); err != nil {
			return err
		}

		p.linker.SetRetvalName(args[0])

	case ".start_frame":
		p.linker.AddPlaceholderInst("loadi", "fp")
		p.linker.AddPlaceholderInst("loadi", "sp")
		p.linker.AddPlaceholderInst("storei", "fp")
		p.linker.LocalsAlloc()

		for _, name := range p.localAddrs {
			p.linker.AddPlaceholderInst("loadi", "fp")
			p.linker.AddPlaceholderInst("addi", name)
			p.linker.AddPlaceholderInst("storef", name+".addr")
		}

		p.localAddrs = nil

	case ".end_frame":
		p.linker.LocalsFree()
		p.linker.AddPlaceholderInst("storei", "fp")

	default:
		return UnknownMacro{Verb: verb}
	}

	return nil
}

// parseIntegerArg parses a decimal integer, a "0x" hex literal, or a
// single-quoted ASCII character literal, per spec §4.4. The second return
// value is false (with a nil error) when arg is none of these and should be
// treated as a symbolic reference instead.
func parseIntegerArg(arg string) (isa.Word, bool, ParseErrorKind) {
	if strings.HasPrefix(arg, "0x") {
		n, err := strconv.ParseInt(arg[2:], 16, 64)
		if err != nil {
			return 0, false, InvalidIntegerArg{Text: arg, Err: err}
		}

		return isa.Word(n), true, nil
	}

	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return isa.Word(n), true, nil
	}

	if len(arg) == 3 && arg[0] == '\'' && arg[2] == '\'' {
		char := arg[1]
		if char > 127 {
			return 0, false, OnlyAsciiCharsSupported{Char: string(char)}
		}

		return isa.Word(char), true, nil
	}

	return 0, false, nil
}

// expectNumArgs reports a WrongNumberOfArguments error when len(args) falls
// outside [min, max].
func expectNumArgs(verb string, args []string, min, max int) ParseErrorKind {
	if len(args) < min || len(args) > max {
		return WrongNumberOfArguments{Verb: verb, Min: min, Max: max, Actual: len(args)}
	}

	return nil
}
