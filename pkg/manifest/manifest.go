// Package manifest records the outcome of an acquisition run as a JSON
// file alongside the output images.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"streetgrab/pkg/logger"
)

// FileName is the manifest's name inside the output directory
const FileName = "manifest.json"

// Entry describes one successful capture
type Entry struct {
	Identity string  `json:"identity"`
	File     string  `json:"file"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Bytes    int     `json:"bytes"`
}

// Manifest is the full run record
type Manifest struct {
	Backend    string    `json:"backend"`
	Requested  int       `json:"requested"`
	Produced   int       `json:"produced"`
	Shortfall  bool      `json:"shortfall"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entries    []Entry   `json:"entries"`
	Version    int       `json:"version"`
}

// Manager handles manifest persistence for one output directory
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a manifest manager for the given output directory
func NewManager(outputDir string) *Manager {
	return &Manager{
		path:   filepath.Join(outputDir, FileName),
		logger: logger.GetLogger(),
	}
}

// Write persists the manifest through a temp file and atomic rename
func (m *Manager) Write(manifest *Manifest) error {
	manifest.Version = 1

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tempPath := m.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}

	m.logger.DebugWithFields("manifest written", map[string]interface{}{
		"path":    m.path,
		"entries": len(manifest.Entries),
	})

	return nil
}

// Load reads a previously written manifest. A missing file returns nil
// without error.
func (m *Manager) Load() (*Manifest, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return &manifest, nil
}

// Path returns where the manifest is written
func (m *Manager) Path() string {
	return m.path
}
