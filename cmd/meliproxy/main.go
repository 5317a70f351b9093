// Package main is the entry point for meliproxy.
package main

import (
	"os"

	"meliproxy/cmd/meliproxy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
