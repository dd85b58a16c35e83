package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPublish_CopiesMigrationsAndSkipsExisting(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "publish", "--tag", "migrations", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "copied")

	matches, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	require.NoError(t, os.WriteFile(matches[0], []byte("-- edited"), 0o644))

	out, err = runCLI(t, "publish", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped")
	got, _ := os.ReadFile(matches[0])
	assert.Equal(t, "-- edited", string(got))

	_, err = runCLI(t, "publish", "--dir", dir, "--force")
	require.NoError(t, err)
	got, _ = os.ReadFile(matches[0])
	assert.NotEqual(t, "-- edited", string(got))
}

func TestPublish_UnknownTag(t *testing.T) {
	_, err := runCLI(t, "publish", "--tag", "views", "--dir", t.TempDir())
	assert.Error(t, err)
}

func TestProviders_ListsBuiltinsAndPlugins(t *testing.T) {
	out, err := runCLI(t, "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "database")
	assert.Contains(t, out, "static")
	assert.Contains(t, out, "envlist")
}
