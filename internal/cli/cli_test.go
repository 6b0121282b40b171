package cli_test

import (
	"context"
	"flag"
	"io"
	"testing"

	. "github.com/mitchelljustin/nais-sub000/internal/cli"
	"github.com/mitchelljustin/nais-sub000/internal/nlog"
)

// probeCommand records whether it ran and with which positional args, for
// asserting dispatch without depending on internal/cli/cmd.
type probeCommand struct {
	name string
	ran  bool
	args []string
}

func (p *probeCommand) Description() string { return "probe" }
func (p *probeCommand) Usage(out io.Writer) error {
	_, err := io.WriteString(out, "probe usage\n")
	return err
}

func (p *probeCommand) FlagSet() *FlagSet {
	return flag.NewFlagSet(p.name, flag.ContinueOnError)
}

func (p *probeCommand) Run(_ context.Context, args []string, _ io.Writer, _ *nlog.Logger) int {
	p.ran = true
	p.args = args

	return 0
}

func TestCommander_DispatchesByName(t *testing.T) {
	probe := &probeCommand{name: "probe"}
	help := &probeCommand{name: "help"}

	commander := New(context.Background()).
		WithCommands(probe).
		WithHelp(help)

	code := commander.Execute([]string{"probe", "a", "b"})

	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}

	if !probe.ran {
		t.Fatal("expected the \"probe\" command to run")
	}

	if help.ran {
		t.Error("expected help not to run when a command matched")
	}

	if len(probe.args) != 2 || probe.args[0] != "a" || probe.args[1] != "b" {
		t.Errorf("probe.args = %v, want [a b]", probe.args)
	}
}

func TestCommander_FallsBackToHelp(t *testing.T) {
	probe := &probeCommand{name: "probe"}
	help := &probeCommand{name: "help"}

	commander := New(context.Background()).
		WithCommands(probe).
		WithHelp(help)

	code := commander.Execute([]string{"nonexistent"})

	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}

	if probe.ran {
		t.Error("expected \"probe\" not to run for an unmatched command name")
	}

	if !help.ran {
		t.Fatal("expected help to run for an unmatched command name")
	}
}

func TestCommander_NoArgsRunsHelp(t *testing.T) {
	help := &probeCommand{name: "help"}

	commander := New(context.Background()).WithHelp(help)

	code := commander.Execute(nil)

	if code != 0 {
		t.Fatalf("Execute() = %d, want 0", code)
	}

	if !help.ran {
		t.Fatal("expected help to run when given no arguments")
	}
}
