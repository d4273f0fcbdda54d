package main

import (
	"os"

	"github.com/andewx/dieselrt/cmd/dieselrt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
