package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesFailureToLogFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WAGERPOOL_CONFIG", "")
	logPath := filepath.Join(t.TempDir(), "wagerpool.log")

	args := os.Args
	t.Cleanup(func() { os.Args = args })
	os.Args = []string{"wagerpool", "--quiet", "--log-file", logPath, "migrate"}

	assert.Equal(t, 1, run())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "operator is required")
}
