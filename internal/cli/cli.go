// Package cli contains the command-line driver described as an external
// collaborator in spec §6: file-extension dispatch and the unsuccessful-
// termination dump. It is ambient tooling around the core three subsystems
// (internal/isa, internal/asm, internal/machine), not part of their
// contract, following smoynes-elsie/internal/cli's Command/Commander split.
package cli

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// Command represents a sub-command the driver can run. Each command owns
// its own flags and exit behavior.
type Command interface {
	// FlagSet returns the flags this command accepts; FlagSet().Name()
	// doubles as the command's dispatch name.
	FlagSet() *flag.FlagSet

	// Description returns a one-line summary for the help command.
	Description() string

	// Usage prints detailed command documentation.
	Usage(out io.Writer) error

	// Run executes the command with its positional arguments, writing
	// program output to out. It returns a process exit code.
	Run(ctx context.Context, args []string, out io.Writer, logger *nlog.Logger) int
}

// Commander runs a single Command chosen by the first CLI argument,
// defaulting to a configured help command when no argument matches.
type Commander struct {
	ctx context.Context
	log *nlog.Logger

	help     Command
	commands []Command
}

// New creates a Commander bound to ctx.
func New(ctx context.Context) *Commander {
	return &Commander{ctx: ctx, log: nlog.DefaultLogger()}
}

// WithCommands registers the Commander's sub-commands.
func (cli *Commander) WithCommands(cmds ...Command) *Commander {
	cli.commands = append([]Command(nil), cmds...)
	return cli
}

// WithHelp sets the fallback command run when no argument is given or no
// command name matches.
func (cli *Commander) WithHelp(cmd Command) *Commander {
	cli.help = cmd
	return cli
}

// WithLogger installs a logger used for the Commander's own diagnostics
// (flag-parse failures); commands receive it via Run's logger argument too.
func (cli *Commander) WithLogger(l *nlog.Logger) *Commander {
	cli.log = l
	return cli
}

// Execute dispatches args[0] to a matching command's FlagSet().Name(),
// parses the remaining arguments as that command's flags, and runs it.
func (cli *Commander) Execute(args []string) int {
	if len(args) == 0 {
		return cli.help.Run(cli.ctx, nil, os.Stdout, cli.log)
	}

	found := cli.help

	for _, cmd := range cli.commands {
		if args[0] == cmd.FlagSet().Name() {
			found = cmd
			args = args[1:]

			break
		}
	}

	fs := found.FlagSet()
	if err := fs.Parse(args); err != nil {
		cli.log.Error("cli: flag parse failed", nlog.Any("err", err.Error()))
		return 1
	}

	return found.Run(cli.ctx, fs.Args(), os.Stdout, cli.log)
}

// FlagSet is a type alias kept for symmetry with the teacher's cli package;
// commands build their flags with the standard library directly.
type FlagSet = flag.FlagSet
