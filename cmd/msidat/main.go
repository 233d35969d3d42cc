// msidat - mass spectrometry imaging data annotation tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/msidat/cmd/msidat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
