package machine

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchelljustin/nais-sub000/internal/isa"
)

// debug.go defines the machine's debugger collaborator (spec §6): it may
// call SetStatus(Running|Stopped) and read memory between cycles, without
// racing a running cycle, since Interact only runs between cycles: from
// cycle() while status is Debugging, and from Run after the loop has halted
// on an error. Grounded on original_source/src/machine.rs's
// debug_cycle/code_dump/stack_dump methods; ported to the teacher's
// bufio.Scanner line-reading idiom (smoynes-elsie's monitor package) rather
// than a raw io.Read_line loop.

// Debugger is the pluggable collaborator consulted once per cycle while
// status is Debugging.
type Debugger interface {
	// Interact runs one round of debugger interaction. It may inspect or
	// mutate the machine, including calling SetStatus.
	Interact(m *Machine)
}

// NopDebugger immediately resumes execution; it is the default when no
// debugger is configured via WithDebugger.
type NopDebugger struct{}

func (NopDebugger) Interact(m *Machine) {
	m.SetStatus(Status{Kind: Running})
}

// SetStatus lets an external debugger transition the machine between
// Running, Debugging, and Stopped.
func (m *Machine) SetStatus(s Status) {
	m.status = s
}

// LineDebugger is a minimal line-oriented REPL reference implementation: it
// understands "c"/"continue", "n"/"next" (single-step), "x"/"exit", "pc"
// (code dump), "ps" (stack dump) and "m <hex addr>" (read one memory cell).
// Any other command prints "?" and prompts again.
type LineDebugger struct {
	In  io.Reader
	Out io.Writer
}

func (d LineDebugger) Interact(m *Machine) {
	in := d.In
	if in == nil {
		in = strings.NewReader("")
	}

	out := d.Out
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintf(out, "CODE:\n%s", m.CodeDump(m.getpc(), -4, 5))
	fmt.Fprintf(out, "STACK:\n%s\n", m.StackDump(m.getsp()-8, m.getsp()))

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "debug% ")

		if !scanner.Scan() {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "c", "continue":
			m.SetStatus(Status{Kind: Running})
			return
		case "n", "next":
			return
		case "x", "exit":
			m.SetStatus(Status{Kind: Stopped})
			return
		case "pc":
			fmt.Fprint(out, m.CodeDump(m.getpc(), -8, 9))
		case "ps":
			fmt.Fprint(out, m.StackDump(0, m.getsp()))
		case "m":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: m <hex addr>")
				continue
			}

			addr, ok := parseHex(fields[1])
			if !ok || !isa.AddrSpace.Contains(addr) {
				fmt.Fprintln(out, "bad address")
				continue
			}

			word := m.mem[addr]
			fmt.Fprintf(out, "%s. %s [%d]\n", addr, word, word)
		default:
			fmt.Fprintln(out, "?")
		}
	}
}

// CodeDump renders the instructions in [center+lo, center+hi), clamped to
// CODE, annotated with owning-frame names and resolved-label targets from
// any attached debug info.
func (m *Machine) CodeDump(center isa.Word, lo, hi int) string {
	start, end := isa.CODE.Clamp(center+isa.Word(lo), center+isa.Word(hi))

	var b strings.Builder

	var curFrame string

	for addr := start; addr < end; addr++ {
		if m.debugInfo != nil {
			if frame, ok := m.debugInfo.FrameNameForInst[int(addr)]; ok && frame != curFrame {
				fmt.Fprintf(&b, "%s:\n", frame)
				curFrame = frame
			}
		}

		word, err := m.unsafeLoad(addr)

		b.WriteString("    ")

		if err != nil {
			fmt.Fprintf(&b, "ERR FETCHING INST addr=%#x\n", uint32(addr))
			continue
		}

		inst, ok := m.enc.Decode(word)
		if !ok {
			fmt.Fprintf(&b, "ERR DECODING INST addr=%#x word=%#x\n", uint32(addr), uint32(word))
			continue
		}

		b.WriteString(inst.WithAddr(addr).String())

		if m.debugInfo != nil {
			if label, ok := m.debugInfo.ResolvedLabels[int(addr)]; ok {
				fmt.Fprintf(&b, " %-12s %s", label.Target, label.LabelType)
			}
		}

		if addr == center {
			b.WriteString(" <========")
		}

		b.WriteString("\n")
	}

	return b.String()
}

// StackDump renders [from, to) of the STACK segment, one word per line,
// annotating the well-known PC/SP/FP/BOUNDARY cells.
func (m *Machine) StackDump(from, to isa.Word) string {
	from, to = isa.STACK.Clamp(from, to)

	var b strings.Builder

	fp := m.getfp()

	for addr := from; addr < to; addr++ {
		tag := ""

		switch addr {
		case isa.PC:
			tag = " pc"
		case isa.SP:
			tag = " sp"
		case isa.FP:
			tag = " fp"
		case isa.BOUNDARY:
			tag = " --"
		}

		fmt.Fprintf(&b, "%04x. %8x [%8d]%s", uint32(addr), uint32(m.mem[addr]), m.mem[addr], tag)

		if addr == fp {
			b.WriteString(" <======== FP")
		}

		b.WriteString("\n")
	}

	return b.String()
}

// parseHex is a small helper for commands that take a literal address
// argument, matching original_source/src/util.rs's permissive parser.
func parseHex(s string) (isa.Word, bool) {
	s = strings.TrimPrefix(s, "0x")

	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, false
	}

	return isa.Word(n), true
}
