// Package main is the entry of the cachesim command.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cachesim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
