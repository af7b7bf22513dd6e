package main

import (
	"os"

	"github.com/calderabio/regulon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
