package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"seed", "benchmark", "batch", "peers", "industry", "index", "import", "export", "runs", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "diligence-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestBenchmarkCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"scenario", "file", "pitch-deck", "enrich", "estimate", "peers", "save", "json", "name", "arr", "stage"} {
		flag := benchmarkCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "benchmark should have --%s flag", flagName)
	}

	save := benchmarkCmd.Flags().Lookup("save")
	require.NotNil(t, save)
	assert.Equal(t, "true", save.DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	flag := batchCmd.Flags().Lookup("file")
	require.NotNil(t, flag, "batch should have --file flag")

	limit := batchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "0", limit.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestPeersCommand_HasSubcommands(t *testing.T) {
	cmds := peersCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"similar", "find", "benchmarks"} {
		assert.True(t, names[name], "peers should have subcommand %q", name)
	}
}

func TestIndexCommand_HasSubcommands(t *testing.T) {
	cmds := indexCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"save", "load", "stats"} {
		assert.True(t, names[name], "index should have subcommand %q", name)
	}
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	cmds := runsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "show", "stats"} {
		assert.True(t, names[name], "runs should have subcommand %q", name)
	}
}
