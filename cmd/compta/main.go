// Package main is the entry point for the compta CLI.
package main

import (
	"os"

	"github.com/moteur-compta/moteur/cmd/compta/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
