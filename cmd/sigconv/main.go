// Command sigconv samples two interval-restricted signals and convolves them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sigconv/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
