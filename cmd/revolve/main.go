// cmd/revolve — command-line front end for gorevolve
//
// Usage:
//
//	revolve compute "x^2" --lower 0 --upper 2
//	revolve derive "sin(x)*x" --second
//	revolve scan "x^3 - 3*x"
//	revolve batch jobs.yaml --concurrency 4
//
// A YAML config file may be given with --config; flags override it.
package main

import (
	"fmt"
	"os"
)

func main() {
	root, release := newRootCmd()
	err := root.Execute()
	if cerr := release(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
