package main

import (
	"os"

	"github.com/termul/termul/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
