package main

import (
	"os"

	"openkanban/cmd/openkanban/commands"
)

var version = "dev"

func main() {
	commands.SetVersion(version)

	// Errors are printed by the printer package
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
