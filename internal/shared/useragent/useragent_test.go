package useragent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolSeedsBuiltins(t *testing.T) {
	p := NewPool()
	assert.Equal(t, len(builtin), p.Len())
	assert.NotEmpty(t, p.Random())
}

func TestLoadFileAppendsAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.txt")
	content := "custom-agent/1.0\n\n  custom-agent/1.0  \n" + builtin[0] + "\ncustom-agent/2.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := NewPool()
	require.NoError(t, p.LoadFile(path))
	assert.Equal(t, len(builtin)+2, p.Len())
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	p := NewPool()
	require.NoError(t, p.LoadFile(filepath.Join(t.TempDir(), "nope.txt")))
	assert.Equal(t, len(builtin), p.Len())
}
