package manifest

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	original := &Manifest{
		Backend:    "api",
		Requested:  5,
		Produced:   3,
		Shortfall:  true,
		StartedAt:  time.Now().Add(-time.Minute).UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
		Entries: []Entry{
			{Identity: "pano_0", File: "pano_0.jpg", Lat: 48.85, Lng: 2.29, Bytes: 1234},
			{Identity: "pano_1", File: "pano_1.jpg", Lat: 51.50, Lng: -0.12, Bytes: 2345},
			{Identity: "pano_2", File: "pano_2.jpg", Lat: 35.65, Lng: 139.74, Bytes: 3456},
		},
	}

	require.NoError(t, m.Write(original))

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "api", loaded.Backend)
	assert.Equal(t, 5, loaded.Requested)
	assert.Equal(t, 3, loaded.Produced)
	assert.True(t, loaded.Shortfall)
	assert.Equal(t, 1, loaded.Version)
	require.Len(t, loaded.Entries, 3)
	assert.Equal(t, "pano_1", loaded.Entries[1].Identity)
	assert.Equal(t, -0.12, loaded.Entries[1].Lng)
}

func TestLoadMissingManifest(t *testing.T) {
	m := NewManager(t.TempDir())

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	require.NoError(t, m.Write(&Manifest{Backend: "browser"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestLoadCorruptManifest(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, os.WriteFile(m.Path(), []byte("{broken"), 0644))

	_, err := m.Load()
	assert.Error(t, err)
}
