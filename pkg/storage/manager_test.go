package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	m, err := NewManager(dir, false)
	require.NoError(t, err)
	assert.Equal(t, dir, m.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	path, err := m.Save("pano_0", []byte("jpeg-data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pano_0.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-data"), data)

	assert.True(t, m.Exists("pano_0"))
	assert.False(t, m.Exists("pano_1"))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, false)
	require.NoError(t, err)

	_, err = m.Save("pano_0", []byte("data"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pano_0.jpg", entries[0].Name())
}

func TestSaveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pano_0.jpg"), []byte("old"), 0644))

	m, err := NewManager(dir, false)
	require.NoError(t, err)
	assert.True(t, m.Exists("pano_0"), "existing output should be discovered on startup")

	_, err = m.Save("pano_0", []byte("new"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSaveOverwriteAllowed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pano_0.jpg"), []byte("old"), 0644))

	m, err := NewManager(dir, true)
	require.NoError(t, err)

	path, err := m.Save("pano_0", []byte("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestNextIndexEmptyDirectory(t *testing.T) {
	m, err := NewManager(t.TempDir(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NextIndex("pano_"))
}

func TestNextIndexSkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pano_0.jpg", "pano_1.jpg", "pano_7.jpg", "other_3.jpg", "pano_x.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0644))
	}

	m, err := NewManager(dir, false)
	require.NoError(t, err)

	// Gaps are not reused; numbering continues past the highest index,
	// and files under other prefixes or without a numeric suffix are ignored
	assert.Equal(t, 8, m.NextIndex("pano_"))
	assert.Equal(t, 4, m.NextIndex("other_"))
	assert.Equal(t, 0, m.NextIndex("missing_"))
}

func TestNextIndexTracksSaves(t *testing.T) {
	m, err := NewManager(t.TempDir(), false)
	require.NoError(t, err)

	_, err = m.Save("pano_0", []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, 1, m.NextIndex("pano_"))
}
