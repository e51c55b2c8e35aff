package main

import (
	"os"

	"querygguf/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
