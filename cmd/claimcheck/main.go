package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dotsetgreg/claimcheck/internal/claims"
	"github.com/dotsetgreg/claimcheck/internal/cli"
	"github.com/dotsetgreg/claimcheck/internal/logging"
)

// Exit codes: 0 verified, 1 discrepancies or no claims found, 2 runtime error.
func main() {
	err := cli.Execute()
	logging.Sync()

	switch {
	case err == nil:
		os.Exit(0)
	case errors.Is(err, cli.ErrUnverified):
		os.Exit(1)
	case errors.Is(err, claims.ErrNoClaim):
		fmt.Fprintf(os.Stderr, "No claims found: %v\n", err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
