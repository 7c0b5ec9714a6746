package main

import (
	"os"

	"github.com/solatis/subordinate/cmd/subordinate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
