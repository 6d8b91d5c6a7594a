package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
