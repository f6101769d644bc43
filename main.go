package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/handoff/cmd"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

func main() {
	if err := cmd.HandoffCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cmd.FormatError(err))
		os.Exit(herrors.ExitCode(err))
	}
}
