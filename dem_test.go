package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lethe-cfd/lethe-dem/lib/config"
)

func TestPrintText(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, PrintText(buf, config.ExampleMode))
	assert.Equal(t, config.ExampleConfig+"\n", buf.String())
	assert.Contains(t, buf.String(), "%05d")

	// The printed example is itself a valid parameter file.
	fname := filepath.Join(t.TempDir(), "example.ini")
	require.NoError(t, ioutil.WriteFile(fname, buf.Bytes(), 0644))
	require.NoError(t, Check(fname, &config.Flags{}))

	buf.Reset()
	require.NoError(t, PrintText(buf, config.HelpMode))
	assert.Equal(t, config.Help+"\n", buf.String())
}
