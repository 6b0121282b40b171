package asm

import (
	"io"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// assembler.go wires the Parser and Linker into the single entry point most
// callers want, mirroring original_source/src/assembler.rs's
// assemble_from_source.

// Result is the product of a successful assembly: an encoded binary ready
// for Machine.LoadCode, and the debug info worth keeping around for dumps
// and an interactive debugger session.
type Result struct {
	Binary    []isa.Word
	DebugInfo *DebugInfo
}

// Option configures an assembly pass.
type Option func(*options)

type options struct {
	log *nlog.Logger
}

// WithLogger overrides the logger used for parse/link diagnostics; the
// default is nlog.DefaultLogger.
func WithLogger(l *nlog.Logger) Option {
	return func(o *options) { o.log = l }
}

// EnvCallNames lists the environment calls in call-code order, so that
// Assemble can seed the "callcode.<name>" constants Init needs. Defined here
// rather than imported from the machine package to avoid a dependency cycle
// (machine already imports asm for DebugInfo). It must stay in the order of
// machine's envCallList; only the machine package's end-to-end tests, which
// call exit and write by name, check this.
var EnvCallNames = []string{"exit", "open", "write", "read", "malloc"}

// Assemble reads assembly source from src, lowers it through a Parser into
// a fresh Linker, and links the result into a binary. Every parse and link
// error is collected and returned together, joined with errors.Join; the
// DebugInfo returned alongside a failure is partial but still useful for
// diagnosing which instructions were emitted before the failure.
func Assemble(src io.Reader, opts ...Option) (*Result, error) {
	cfg := options{log: nlog.DefaultLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	linker := NewLinker(cfg.log)
	linker.Init(EnvCallNames)

	parser := NewParser(linker, cfg.log)
	parser.Parse(src)
	linker.Finish()

	binary, debugInfo, linkErr := linker.Link()

	err := joinErrors([]error{parser.Err(), linkErr})
	if err != nil {
		return &Result{DebugInfo: debugInfo}, err
	}

	return &Result{Binary: binary, DebugInfo: debugInfo}, nil
}
