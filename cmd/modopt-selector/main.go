// Package main provides the entry point for modopt-selector, which installs
// and uninstalls mod options listed in the manifest.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
