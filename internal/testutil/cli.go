// Package testutil provides helpers shared by package tests.
package testutil

// ExecResult holds the result of a CLI command execution.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
