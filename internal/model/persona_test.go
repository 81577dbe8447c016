package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPersona_Default(t *testing.T) {
	p, err := LoadPersona("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPersonaName, p.Name)
	assert.Equal(t, RizalScript, p.Script)
	assert.Equal(t, RizalGateCriteria, p.GateCriteria)
}

func TestLoadPersona_ScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mabini.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Embody Apolinario Mabini.\n"), 0o600))

	p, err := LoadPersona("Apolinario Mabini", path)
	require.NoError(t, err)
	assert.Equal(t, "Apolinario Mabini", p.Name)
	assert.Equal(t, "Embody Apolinario Mabini.", p.Script)
	assert.Contains(t, p.GateCriteria, "Apolinario Mabini's life")
}

func TestLoadPersona_EmptyScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o600))

	_, err := LoadPersona("x", path)
	assert.Error(t, err)

	_, err = LoadPersona("x", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestMemoryFormatting(t *testing.T) {
	content := FormatMemoryContent("alice", "Jose Rizal", "I'm a nurse", "A noble calling.")
	assert.Equal(t, "alice: I'm a nurse\nJose Rizal: A noble calling.", content)

	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.FixedZone("PHT", 8*3600))
	line := MemoryResult{Content: content, Timestamp: ts}.ContextLine()
	assert.Equal(t, "[2026-03-01T00:30:00Z] alice: I'm a nurse\nJose Rizal: A noble calling.", line)
}

func TestLoadPersona_NameWithoutScript(t *testing.T) {
	_, err := LoadPersona("Apolinario Mabini", "")
	assert.ErrorContains(t, err, "needs a script_file")

	p, err := LoadPersona(DefaultPersonaName, "")
	require.NoError(t, err)
	assert.Equal(t, RizalScript, p.Script)
}
