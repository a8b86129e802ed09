// Command authctl drives the auth API from a terminal. The session cookie is
// kept in a file between invocations.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
