// Package main provides the linkaudit CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/lukemcguire/linkaudit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
