// Package main is the entry point for the autocomplete CLI.
package main

import (
	"fmt"
	"os"

	"github.com/runger/autocomplete/internal/cmd"
)

func main() {
	err := cmd.Execute()
	if err != nil && !cmd.Silent(err) {
		fmt.Fprintf(os.Stderr, "autocomplete: %v\n", err)
	}
	os.Exit(cmd.ExitCode(err))
}
