package main

import (
	"errors"
	"fmt"
	"os"

	provErrors "github.com/tatoeba/tatoprov/pkg/errors"
)

// Exit codes returned to the shell.
const (
	exitFailure = 1
	exitConfig  = 2
	exitLocked  = 3
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		parseErr *provErrors.ParseError
		valErr   *provErrors.ValidationError
		lockErr  *provErrors.LockError
	)
	switch {
	case errors.As(err, &lockErr):
		return exitLocked
	case errors.As(err, &parseErr), errors.As(err, &valErr):
		return exitConfig
	default:
		return exitFailure
	}
}
