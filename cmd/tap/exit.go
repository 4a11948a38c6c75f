package main

import (
	"errors"
	"fmt"
	"io"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitNoResults  = 1
	ExitInputError = 2
	ExitIndexError = 3
)

// errNoResults ends a search that matched nothing.
var errNoResults = errors.New("no results")

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func inputError(err error) error {
	return &exitError{code: ExitInputError, err: err}
}

func indexError(err error) error {
	return &exitError{code: ExitIndexError, err: err}
}

// reportError prints err to w and returns the process exit code.
// Errors without an exit code are usage errors.
func reportError(w io.Writer, err error) int {
	if errors.Is(err, errNoResults) {
		_, _ = fmt.Fprintln(w, "No results for search")
		return ExitNoResults
	}

	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitInputError
}
