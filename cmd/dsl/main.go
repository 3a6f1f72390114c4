package main

import (
	"os"

	"github.com/cwbudde/go-dsl/cmd/dsl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
