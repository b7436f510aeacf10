package main

import (
	"os"

	"github.com/tormodhaugland/de/cmd/de/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
