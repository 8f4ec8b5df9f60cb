package main

import (
	"os"

	"github.com/clinicgate/clinicgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
