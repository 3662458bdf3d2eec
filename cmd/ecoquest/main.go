package main

import (
	"fmt"
	"os"

	"github.com/ecoquest/ecoquest-engine/internal/adapters/handler/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
