// This is the main-driver for our compiler.
package main

import (
	"fmt"
	"os"

	"github.com/arnvindr/subcc/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "subcc: %s\n", err)
		os.Exit(1)
	}
}
