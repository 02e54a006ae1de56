// Package main provides the blobcache CLI for inspecting and editing a
// blobcache document in any supported store.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
