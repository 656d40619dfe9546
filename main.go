package main

import (
	"os"

	"github.com/avashisk/prepdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
