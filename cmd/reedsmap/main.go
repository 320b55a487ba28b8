package main

import (
	"fmt"
	"os"

	"github.com/r2x-tools/reedsmap/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
