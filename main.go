// The main package for the ytfleet executable.
package main

import (
	"ytfleet/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
