package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareTrack = `
fixes:
  - {lat: 0, lon: 0}
  - {lat: 0, lon: 0.0026949458715630117}
  - {lat: 0.002699470147999351, lon: 0.0026949458715630117}
  - {lat: 0.002699470147999351, lon: 0}
`

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() { emitGeoJSON = false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func writeTrack(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "square.yaml")
	require.NoError(t, os.WriteFile(path, []byte(squareTrack), 0o644))
	return path
}

func TestAreaCommand(t *testing.T) {
	out := runCLI(t, "area", writeTrack(t))
	assert.Contains(t, out, "Area: 22 acres 9 Guntha (")
}

func TestAreaCommandWritesPlainTextToNonTerminal(t *testing.T) {
	out := runCLI(t, "area", writeTrack(t))

	assert.True(t, strings.HasPrefix(out, "Area: "))
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.NotContains(t, out, "Land Area")
	assert.NotContains(t, out, "\x1b[")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

func TestAreaCommandGeoJSON(t *testing.T) {
	out := runCLI(t, "area", "--geojson", writeTrack(t))

	var feature struct {
		Type       string                 `json:"type"`
		Properties map[string]interface{} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &feature))
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, "acres", feature.Properties["unit"])
}

func TestAreaCommandMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"area", filepath.Join(t.TempDir(), "missing.yaml")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
