// Command filterkit builds filter documents into JSON IR and SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/filterkit/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own failures; only cobra usage errors are unprinted.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
