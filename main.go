package main

import (
	"os"

	"github.com/josephlewis42/treesh/cmd"
	"github.com/josephlewis42/treesh/core"
)

func main() {
	if core.IsChild(os.Args) {
		os.Exit(core.RunChild())
	}

	cmd.Execute()
}
