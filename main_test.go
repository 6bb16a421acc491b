package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	require.NoError(t, run([]string{"version"}))
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run([]string{"ingest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "ingest"`)
}
