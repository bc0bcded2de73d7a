package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilesListShowsBuiltinDefault(t *testing.T) {
	rootCmd.SetArgs([]string{"profiles", "list"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)

	out := buf.String()
	assert.Contains(t, out, "Available Profiles:")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "built-in")
}

func TestProfilesInitCreatesFile(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "dirsum.toml")

	rootCmd.SetArgs([]string{"profiles", "init", "--output", outputPath})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "Created")

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "[profile.default]")
}

func TestProfilesInitRefusesOverwriteWithoutYes(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "dirsum.toml")
	require.NoError(t, os.WriteFile(outputPath, []byte("existing"), 0o644))

	rootCmd.SetArgs([]string{"profiles", "init", "--output", outputPath})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.NotEqual(t, 0, code)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(contents))
}

func TestProfilesInitOverwritesWithYes(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "dirsum.toml")
	require.NoError(t, os.WriteFile(outputPath, []byte("existing"), 0o644))

	rootCmd.SetArgs([]string{"profiles", "init", "--output", outputPath, "--yes"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "[profile.default]")
}

func TestProfilesShowDefault(t *testing.T) {
	rootCmd.SetArgs([]string{"profiles", "show"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.NotEmpty(t, buf.String())
}

func TestProfilesShowJSON(t *testing.T) {
	rootCmd.SetArgs([]string{"profiles", "show", "--json"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "{")
}

func TestProfilesShowUnknownProfile(t *testing.T) {
	rootCmd.SetArgs([]string{"profiles", "show", "nonexistent-profile"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.NotEqual(t, 0, code)
}
