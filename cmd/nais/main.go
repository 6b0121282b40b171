// nais is the command-line driver for the stack-machine toolchain: it
// assembles and runs a .asm file, or loads and runs a .bin file directly.
package main

import (
	"context"
	"os"

	"github.com/mitchelljustin/nais-sub000/internal/cli"
	"github.com/mitchelljustin/nais-sub000/internal/cli/cmd"
)

func main() {
	runCmd := cmd.Run()
	commander := cli.New(context.Background()).
		WithCommands(runCmd).
		WithHelp(cmd.Help([]cli.Command{runCmd}))

	os.Exit(commander.Execute(os.Args[1:]))
}
