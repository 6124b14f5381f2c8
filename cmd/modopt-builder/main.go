// Package main provides the entry point for modopt-builder, which edits the
// mod options manifest and packages the mod for distribution.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
