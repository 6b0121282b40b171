package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/mitchelljustin/nais-sub000/internal/cli"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

type help struct {
	cmds []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string { return "display help for commands" }

func (help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h *help) Run(_ context.Context, _ []string, out io.Writer, _ *nlog.Logger) int {
	if err := h.Usage(out); err != nil {
		return 1
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
nais is a toy stack-machine assembler and virtual machine.

Usage:

        nais <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, c := range h.cmds {
		fs := c.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), c.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())

	return nil
}

// Help returns the default help command, listing cmds in its usage output.
func Help(cmds []cli.Command) *help {
	return &help{cmds: cmds}
}
