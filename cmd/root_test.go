package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "brief", "leads"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "briefing", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.Equal(t, version, rootCmd.Version)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	grace := serveCmd.Flags().Lookup("grace")
	require.NotNil(t, grace)
	assert.Equal(t, "1m0s", grace.DefValue)
}

func TestBriefCommand_RequiredFlags(t *testing.T) {
	for _, name := range []string{"domain", "context", "lead"} {
		flag := briefCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "brief command should have --%s flag", name)
		assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
	}
}
