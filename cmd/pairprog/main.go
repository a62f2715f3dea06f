// Package main provides the entry point for the pairprog CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pairprog-ai/pairprog/cmd/pairprog/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
