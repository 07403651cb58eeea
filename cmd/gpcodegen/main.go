// Command gpcodegen drives the runtime code generator from the shell:
// dump generated accessor modules for a layout schema, or run the full
// generate-optimize-execute lifecycle on a demonstration function.
package main

import (
	"fmt"
	"os"

	"github.com/ashwinstar/gpdb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
