package main

import (
	"os"

	"github.com/existflow/sprintplan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
