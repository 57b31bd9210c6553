// Package main provides extractctl, an operator CLI for running document
// extractions against the object store without going through the API server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
