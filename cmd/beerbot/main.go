// Command beerbot drives the craft beer bot from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/craftbeerbot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
