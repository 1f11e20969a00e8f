package main

import (
	"os"

	"github.com/revisio/revisio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
