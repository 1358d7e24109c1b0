package main

import (
	"os"

	"github.com/lesechos/accounts/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
