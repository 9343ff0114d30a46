package main

import (
	"github.com/syntruptor/syntctl/cmd"

	_ "modernc.org/sqlite"
)

func main() {
	cmd.Execute()
}
