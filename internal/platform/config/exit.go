package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitIfError exits through Exitf when err is non-nil, prefixing the message
// with the failed step.
func ExitIfError(step string, err error) {
	if err == nil {
		return
	}
	Exitf("%s: %v", step, err)
}
