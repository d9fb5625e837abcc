package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduction(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{})
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("shown", "rows", 9)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"rows":9`)
}

func TestNewDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{Development: true})
	defer closer.Close()

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	var buf bytes.Buffer
	logger, closer := New(&buf, Options{File: path})

	logger.With("game", 1).Info("saved")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"game":1`)
	assert.Contains(t, buf.String(), `"msg":"saved"`)
}
