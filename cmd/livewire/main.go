package main

import (
	"os"

	"github.com/TheClassicTechno/LiveWire-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
