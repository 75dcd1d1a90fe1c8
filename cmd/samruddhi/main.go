package main

import (
	"os"

	"github.com/samruddhi/pipecut/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
