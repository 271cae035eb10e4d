// Command pectl is the operator CLI of the declaration service: it fills the
// form offline, checks a template against the field vocabulary, computes the
// presumption and exports inventories.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
