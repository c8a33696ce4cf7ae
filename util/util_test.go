package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.MIDI", "c.txt", "sub/d.mid"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	paths, err := GatherPaths(dir, MidiExtensions, 0)
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	paths, err = GatherPaths(dir, MidiExtensions, 2)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.gob")
	in := map[string][]int{"a": {1, 2}, "b": {3}}
	require.NoError(t, WriteBinary(path, in))

	out, err := ReadBinary[map[string][]int](path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestGetKeysSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, GetKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}

func TestSum(t *testing.T) {
	assert.Equal(t, uint64(6), Sum([]uint8{1, 2, 3}))
}
