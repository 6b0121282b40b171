package asm_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/mitchelljustin/nais-sub000/internal/asm"
	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

func newLinker(t *testing.T) *Linker {
	t.Helper()

	l := NewLinker(nil)
	l.Init(EnvCallNames)

	return l
}

func TestParser_CommentsAndBlankLines(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader("; just a comment\n\nentry:\npush 1 ; trailing comment\n"))
	l.Finish()

	if err := p.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	_, _, err := l.Link()
	if err != nil {
		t.Fatalf("Link() = %v, want nil", err)
	}
}

func TestParser_Labels(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader(`
main:
	push 1
_inner:
	push 2
other:
	push 3
`))
	l.Finish()

	if err := p.Err(); err != nil {
		t.Fatalf("parse errors: %v", err)
	}

	_, info, err := l.Link()
	if err != nil {
		t.Fatalf("Link() = %v, want nil", err)
	}

	if _, ok := info.CallFrames["main"]; !ok {
		t.Error("expected subroutine label \"main\" to open a call frame")
	}

	if _, ok := info.CallFrames["other"]; !ok {
		t.Error("expected subroutine label \"other\" to open a call frame")
	}

	main := info.CallFrames["main"]
	if _, ok := main.InnerLabels["_inner"]; !ok {
		t.Error("expected inner label \"_inner\" scoped to frame \"main\"")
	}
}

func TestParser_IntegerOperands(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader(`
entry:
	push 10
	push 0x1f
	push '!'
`))
	l.Finish()

	if err := p.Err(); err != nil {
		t.Fatalf("parse errors: %v", err)
	}

	binary, _, err := l.Link()
	if err != nil {
		t.Fatalf("Link() = %v, want nil", err)
	}

	enc := isa.NewEncoder()

	wantArgs := []isa.Word{10, 0x1f, '!'}
	for i, want := range wantArgs {
		inst, ok := enc.Decode(binary[i])
		if !ok {
			t.Fatalf("binary[%d]: decode failed", i)
		}

		if inst.Arg != want {
			t.Errorf("binary[%d].Arg = %d, want %d", i, inst.Arg, want)
		}
	}
}

func TestParser_MultipleOperandsIsError(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader("entry:\n\tpush 1 2\n"))
	l.Finish()

	if err := p.Err(); err == nil {
		t.Fatal("expected an error for an instruction with two operands")
	}
}

func TestParser_UnknownMacro(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader("entry:\n\t.frobnicate\n"))
	l.Finish()

	err := p.Err()
	if err == nil {
		t.Fatal("expected an UnknownMacro error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Err() = %v, want a *ParseError", err)
	}

	if _, ok := parseErr.Kind.(UnknownMacro); !ok {
		t.Errorf("Kind = %#v, want UnknownMacro", parseErr.Kind)
	}
}

func TestParser_DirectiveArgCountEnforced(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader("entry:\n\t.locals\n")) // .locals needs 1..10 names
	l.Finish()

	if err := p.Err(); err == nil {
		t.Fatal("expected a WrongNumberOfArguments error")
	}
}

func TestParser_LocalsDeclaresLenConstant(t *testing.T) {
	l := newLinker(t)
	p := NewParser(l, nil)

	p.Parse(strings.NewReader(`
entry:
	.locals count
	push count.len
`))
	l.Finish()

	if err := p.Err(); err != nil {
		t.Fatalf("parse errors: %v", err)
	}

	binary, _, err := l.Link()
	if err != nil {
		t.Fatalf("Link() = %v, want nil", err)
	}

	enc := isa.NewEncoder()

	inst, ok := enc.Decode(binary[0])
	if !ok {
		t.Fatal("decode failed")
	}

	if inst.Arg != 1 {
		t.Errorf("count.len = %d, want 1", inst.Arg)
	}
}
