package main

import (
	"testing"

	"github.com/meridian-ai/meridian/cmd/meridian/internal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFlags swaps the package-global flag state for a test and restores
// it afterwards.
func setFlags(t *testing.T, flags GlobalFlags) {
	t.Helper()
	saved := *globalFlags
	*globalFlags = flags
	t.Cleanup(func() { *globalFlags = saved })
}

func TestParseGlobalFlags_Valid(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "json", Verbose: true})

	flags, err := ParseGlobalFlags(&cobra.Command{})
	require.NoError(t, err)
	assert.True(t, flags.Verbose)
	assert.Equal(t, internal.FormatJSON, flags.OutputFormat())
}

func TestParseGlobalFlags_InvalidOutput(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "yaml"})

	_, err := ParseGlobalFlags(&cobra.Command{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestParseGlobalFlags_InvalidLogFormat(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text", LogFormat: "logfmt"})

	_, err := ParseGlobalFlags(&cobra.Command{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestParseGlobalFlags_VerboseQuietConflict(t *testing.T) {
	setFlags(t, GlobalFlags{Output: "text", Verbose: true, Quiet: true})

	_, err := ParseGlobalFlags(&cobra.Command{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")
}

func TestGlobalFlags_Modes(t *testing.T) {
	flags := &GlobalFlags{Output: "text", Verbose: true}
	assert.True(t, flags.IsVerbose())
	assert.False(t, flags.IsQuiet())
	assert.Equal(t, internal.FormatText, flags.OutputFormat())

	// Quiet wins over verbose for log chatter.
	flags.Quiet = true
	assert.False(t, flags.IsVerbose())
	assert.True(t, flags.IsQuiet())
}
