package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitError ends the process with a failing status after the command has
// already reported the problem itself.
type exitError struct {
	reason string
}

func (e *exitError) Error() string {
	return e.reason
}
