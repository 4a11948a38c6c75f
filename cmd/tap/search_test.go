package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCommand(t *testing.T) {
	fooLines := "" +
		"v   amd64  foo        -> bar 2.0\n" +
		"i   amd64  foo        1.0 - The Foo utility\n" +
		"iAu amd64  libfoo-dev 1.0 - Foo development files\n" +
		"p   amd64  libfoo-dev 1.1 - Foo development files\n"

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default command", []string{"foo"}, fooLines},
		{"search command", []string{"search", "foo"}, fooLines},
		{"installed", []string{"-F", "%s%A%u %n %v", "~i"}, "" +
			"b   broken-tool 0.9\n" +
			"i   foo 1.0\n" +
			"iAu libfoo-dev 1.0\n"},
		{"virtual format", []string{"-G", "%n via %p", "-F", "%n", "foo"}, "" +
			"foo via bar\n" +
			"foo\n" +
			"libfoo-dev\n" +
			"libfoo-dev\n"},
		{"virtual format alias", []string{"search", "--virtual-format", "%n<%p", "-F", "%n", "~dreplacement"}, "" +
			"bar\n" +
			"foo<bar\n"},
		{"foreign architecture", []string{"-F", "%n %a", "~aarmhf"}, "libbaz:armhf armhf\n"},
		{"any architecture", []string{"-F", "%n", "~aany~dlibrary"}, "libbaz:armhf\n"},
		{"description", []string{"-F", "%n", "~p~dREPLACEMENT"}, "bar\n"},
		{"aligned", []string{"-F", "[%|n][%|v]", "-G", "[%|n]", "~p~dfoo"}, "" +
			"[bar       ][2.0]\n" +
			"[foo       ][1.0]\n" +
			"[libfoo-dev][1.0]\n" +
			"[libfoo-dev][1.1]\n"},
		{"name regexp", []string{"-F", "%n %v", "~p~n/^lib.*-dev$/"}, "" +
			"libfoo-dev 1.0\n" +
			"libfoo-dev 1.1\n"},
		{"select field", []string{"-F", "%S%s %n", "~i"}, "" +
			"ib broken-tool\n" +
			"ii foo\n" +
			"ii libfoo-dev\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runCLI(t, tt.args...)
			require.Equal(t, ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)
			assert.Equal(t, tt.want, result.Stdout)
		})
	}
}

func TestSearchCommandErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{"no results", []string{"qux"}, ExitNoResults, "No results for search"},
		{"no patterns", []string{}, ExitNoResults, "No results for search"},
		{"no patterns never reads the index", []string{"--snapshot", "testdata/missing.yaml"}, ExitNoResults, "No results for search"},
		{"unknown operator", []string{"foo", "~xbar"}, ExitInputError, `"~xbar"`},
		{"pattern checked before index", []string{"--snapshot", "testdata/missing.yaml", "~x"}, ExitInputError, "unknown pattern operator"},
		{"unknown field", []string{"-F", "%q", "foo"}, ExitInputError, "unknown format field"},
		{"unsupported alignment", []string{"-G", "%|p", "foo"}, ExitInputError, "does not support alignment"},
		{"missing snapshot", []string{"--snapshot", "testdata/missing.yaml", "foo"}, ExitIndexError, "unable to open snapshot"},
		{"invalid snapshot", []string{"--snapshot", "testdata/config.toml", "foo"}, ExitIndexError, "snapshot"},
		{"architecture override", []string{"--arch", "i386", "foo"}, ExitNoResults, "No results for search"},
		{"unknown flag", []string{"--bogus", "foo"}, ExitInputError, "unknown flag"},
		{"json and table", []string{"-j", "-t", "foo"}, ExitInputError, "none of the others"},
		{"invalid regexp", []string{"~n/(/"}, ExitInputError, "invalid regular expression"},
		{"subcommand name as pattern", []string{"search", "version"}, ExitNoResults, "No results for search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantCode, result.ExitCode, "stderr: %s", result.Stderr)
			assert.Empty(t, result.Stdout)
			assert.Contains(t, result.Stderr, tt.wantStderr)
		})
	}
}

func TestSearchCommandJSON(t *testing.T) {
	result := runCLI(t, "-j", "foo")
	require.Equal(t, ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Stdout), &entries))
	require.Len(t, entries, 4)

	assert.Equal(t, "bar", entries[0]["package"])
	assert.Equal(t, true, entries[0]["virtual"])
	assert.Equal(t, "A", entries[2]["automatic"])
	assert.Equal(t, "u", entries[2]["upgrade"])
	assert.Equal(t, "iAu amd64  libfoo-dev 1.0 - Foo development files", entries[2]["line"])
}

func TestSearchCommandTable(t *testing.T) {
	result := runCLI(t, "-t", "foo")
	require.Equal(t, ExitSuccess, result.ExitCode, "stderr: %s", result.Stderr)

	lines := strings.Split(strings.TrimSuffix(result.Stdout, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "STATE"))
	assert.Contains(t, lines[1], "foo -> bar")
}

func TestSearchCommandIdempotent(t *testing.T) {
	first := runCLI(t, "ba", "~dfoo", "~aany")
	second := runCLI(t, "ba", "~dfoo", "~aany")
	require.Equal(t, ExitSuccess, first.ExitCode)
	assert.Equal(t, first.Stdout, second.Stdout)
}

func TestSearchCommandLogging(t *testing.T) {
	result := runCLI(t, "-vv", "foo")
	require.Equal(t, ExitSuccess, result.ExitCode)
	assert.Contains(t, result.Stderr, "Compiled query")
	assert.Contains(t, result.Stderr, `Name(contains \"foo\")`)

	result = runCLI(t, "--log-json", "-v", "foo")
	require.Equal(t, ExitSuccess, result.ExitCode)
	assert.Contains(t, result.Stderr, `"message":"Search finished"`)
	assert.NotContains(t, result.Stderr, "Compiled query")
}

func TestRootHelpNamesSearchForSubcommandWords(t *testing.T) {
	result := runCLI(t, "--help")
	require.Equal(t, ExitSuccess, result.ExitCode)
	assert.Contains(t, result.Stdout, "version, config or snapshot selects a subcommand")
	assert.Contains(t, result.Stdout, "tap search version")
	assert.Contains(t, result.Stdout, "/RE/ is a regular expression")

	// Without the search subcommand the word runs the version command.
	result = runCLI(t, "version")
	require.Equal(t, ExitSuccess, result.ExitCode)
	assert.Contains(t, result.Stdout, "tap dev")
}
