package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/ivoronin/tap/internal/testutil"
)

const testConfig = "testdata/config.toml"

// runCLI executes tap in-process with the test configuration.
func runCLI(t *testing.T, args ...string) testutil.ExecResult {
	t.Helper()

	saved := log.Logger
	t.Cleanup(func() { log.Logger = saved })

	var stdout, stderr bytes.Buffer
	code := execute(append([]string{"--config", testConfig}, args...), &stdout, &stderr)
	return testutil.ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: code,
	}
}
