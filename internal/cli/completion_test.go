package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionBash(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "bash"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "bash")
}

func TestCompletionZsh(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "zsh"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.NotEmpty(t, buf.String())
}

func TestCompletionFish(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "fish"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.NotEmpty(t, buf.String())
}

func TestCompletionPowerShell(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "powershell"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.NotEmpty(t, buf.String())
}

func TestCompletionNoArgsShowsHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"completion"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "Bash:")
}

func TestCompletionInvalidShell(t *testing.T) {
	rootCmd.SetArgs([]string{"completion", "tcsh"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.NotEqual(t, 0, code)
}
