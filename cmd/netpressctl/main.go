// netpressctl is the operator client for a running netpressd: content
// management, tool invocation, context inspection, and metrics, all over
// the daemon's admin API.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	root := newRootCommand()
	err := root.Execute()
	if err == nil {
		return
	}

	var exitErr exitError
	if errors.As(err, &exitErr) {
		if !exitErr.silent && exitErr.message != "" {
			fmt.Fprintln(os.Stderr, exitErr.message)
		}
		os.Exit(exitErr.code)
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
