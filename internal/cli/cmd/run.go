// Package cmd implements the driver's sub-commands, grounded on
// smoynes-elsie/internal/cli/cmd.
package cmd

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchelljustin/nais-sub000/internal/asm"
	"github.com/mitchelljustin/nais-sub000/internal/cli"
	"github.com/mitchelljustin/nais-sub000/internal/isa"
	"github.com/mitchelljustin/nais-sub000/internal/machine"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// Run implements the driver's only required behavior (spec §6): given a
// single filename, ".asm" assembles then runs (also persisting the binary
// next to the source), ".bin" loads the binary directly, and any other
// extension is a fatal error. On unsuccessful termination it writes a code
// and stack dump and, if -debug is set, drops into the reference
// LineDebugger.
func Run() cli.Command {
	return &runner{}
}

type runner struct {
	debug     bool
	maxCycles uint64
}

func (runner) Description() string {
	return "assemble-and-run a .asm file, or load and run a .bin file"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [-debug] [-max-cycles N] FILE

FILE.asm is assembled then run; the assembled binary is also written next
to FILE as FILE.bin. FILE.bin is loaded and run directly. Any other
extension is a fatal error.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.debug, "debug", false, "enter the line debugger on a runtime fault")
	fs.Uint64Var(&r.maxCycles, "max-cycles", 0, "halt after N fetch/execute cycles (0 = unbounded)")

	return fs
}

func (r *runner) Run(ctx context.Context, args []string, out io.Writer, logger *nlog.Logger) int {
	if len(args) != 1 {
		fmt.Fprintln(out, "run: expected exactly one FILE argument")
		return 1
	}

	filename := args[0]

	words, debugInfo, err := r.loadOrAssemble(filename, logger)
	if err != nil {
		logger.Error("run: load failed", nlog.Any("file", filename), nlog.Any("err", err.Error()))
		return 1
	}

	opts := []machine.OptionFn{machine.WithLogger(logger)}
	if r.maxCycles > 0 {
		opts = append(opts, machine.WithMaxCycles(r.maxCycles))
	}

	if r.debug {
		opts = append(opts, machine.WithDebugger(machine.LineDebugger{In: os.Stdin, Out: out}))
	}

	m := machine.New(opts...)
	m.LoadDebugInfo(debugInfo)

	if err := m.LoadCode(words); err != nil {
		logger.Error("run: load code failed", nlog.Any("err", err.Error()))
		return 1
	}

	runErr := m.Run(ctx)
	if runErr == nil {
		return 0
	}

	fmt.Fprintln(out, "PROGRAM FAULTED:", runErr)
	fmt.Fprint(out, m.CodeDump(isa.CODE.Start, -4, 5))
	fmt.Fprint(out, m.StackDump(0, isa.Word(isa.INIT_SP)+32))

	return 1
}

// loadOrAssemble dispatches on filename's extension, per spec §6.
func (r *runner) loadOrAssemble(filename string, logger *nlog.Logger) ([]isa.Word, *asm.DebugInfo, error) {
	switch ext := filepath.Ext(filename); ext {
	case ".asm":
		return r.assembleAndPersist(filename, logger)
	case ".bin":
		words, err := readBinary(filename)
		return words, nil, err
	default:
		return nil, nil, fmt.Errorf("run: unsupported file extension %q (want .asm or .bin)", ext)
	}
}

func (r *runner) assembleAndPersist(filename string, logger *nlog.Logger) ([]isa.Word, *asm.DebugInfo, error) {
	src, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	result, err := asm.Assemble(src, asm.WithLogger(logger))
	if err != nil {
		return nil, result.DebugInfo, err
	}

	binPath := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".bin"
	if err := writeBinary(binPath, result.Binary); err != nil {
		return nil, nil, fmt.Errorf("run: writing %s: %w", binPath, err)
	}

	return result.Binary, result.DebugInfo, nil
}

// writeBinary persists a program as a raw, little-endian sequence of 32-bit
// words, per spec §6's binary format (no header, no symbol table).
func writeBinary(path string, words []isa.Word) error {
	buf := make([]byte, 4*len(words))

	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(w))
	}

	return os.WriteFile(path, buf, 0o644)
}

func readBinary(path string) ([]isa.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("run: %s: length %d is not a multiple of 4", path, len(data))
	}

	words := make([]isa.Word, len(data)/4)
	for i := range words {
		words[i] = isa.Word(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}

	return words, nil
}
