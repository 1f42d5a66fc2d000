package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"causalUplift/domain"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode prints a diagnostic for err and picks the process status: 2 when
// the dataset could not be read, 1 for every other failure.
func exitCode(err error, w io.Writer) int {
	var dataErr *domain.DataAccessError
	if errors.As(err, &dataErr) {
		fmt.Fprintf(w, "Data not found at %s. Generate or copy the dataset first.\n", dataErr.Path)
		return 2
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
