package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/2x3systems/gplan/gplan"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func lines(out string) []string {
	return strings.Split(strings.TrimSpace(out), "\n")
}

func TestExtendCmd(t *testing.T) {
	out, err := run(t, "extend", "(1)-[]-(2)-[]-(3)-[]-(1)")
	require.NoError(t, err)
	require.Len(t, lines(out), 3)
	require.True(t, strings.HasPrefix(out, "+3"), out)

	_, err = run(t, "extend", "(1)-[]-")
	require.Error(t, err)
}

func TestDecomposeCmd(t *testing.T) {
	out, err := run(t, "decompose", "(1)-[]-(2)-[]-(3)-[]-(4)")
	require.NoError(t, err)
	require.Len(t, lines(out), 1)

	out, err = run(t, "decompose", "--min-pattern-size", "5", "(1)-[]-(2)-[]-(3)-[]-(4)")
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(out))
}

func TestCatalogCmds(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "glogue")

	out, err := run(t, "catalog", "build", "--catalog", dbPath, "(1)-[]-(2)-[]-(3)-[]-(1)")
	require.NoError(t, err)
	require.Contains(t, out, "added 2 patterns")

	out, err = run(t, "catalog", "list", "--catalog", dbPath)
	require.NoError(t, err)
	require.Len(t, lines(out), 2)

	out, err = run(t, "catalog", "list", "--catalog", dbPath, "--min", "3")
	require.NoError(t, err)
	require.Len(t, lines(out), 1)

	// Served by the catalog
	out, err = run(t, "extend", "--catalog", dbPath, "(7)-[]-(8)-[]-(9)-[]-(7)")
	require.NoError(t, err)
	require.Len(t, lines(out), 3)

	_, err = run(t, "catalog", "list")
	require.Error(t, err)
}

func TestCatalogBuildNeedsPath(t *testing.T) {
	out, err := run(t, "catalog", "build", "(1)-[]-(2)-[]-(3)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--catalog")
	require.NotContains(t, out, "added")
}

func TestExploreCmd(t *testing.T) {
	out, err := run(t, "explore", "(1)-[]-(2)-[]-(3)")
	require.NoError(t, err)
	require.Contains(t, out, "scan")
	require.Contains(t, out, "extend")
}

func TestConfigLayers(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "gplan.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("min_pattern_size: 5\n"), 0644))

	out, err := run(t, "decompose", "--config", cfgPath, "(1)-[]-(2)-[]-(3)-[]-(4)")
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(out))

	t.Setenv("GPLAN_MIN_PATTERN_SIZE", "0")
	_, err = run(t, "decompose", "(1)-[]-(2)")
	require.True(t, errors.Is(err, gplan.ErrBadConfig))
}
