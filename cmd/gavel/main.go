package main

import (
	"os"

	"github.com/gavel-dev/gavel/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
