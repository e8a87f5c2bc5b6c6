// Package storage persists processed panoramas to the output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Manager handles file storage operations and duplicate detection
type Manager struct {
	outputDir string
	overwrite bool
	written   map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a storage manager rooted at outputDir, creating the
// directory if needed and scanning it for existing output.
func NewManager(outputDir string, overwrite bool) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := &Manager{
		outputDir: outputDir,
		overwrite: overwrite,
		written:   make(map[string]bool),
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan output directory: %w", err)
	}

	return m, nil
}

// scanExistingFiles records already-written identities so a re-run does
// not silently clobber them
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".jpg") {
			identity := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			m.written[identity] = true
		}
	}

	return nil
}

// NextIndex returns the first output index past any existing
// prefix-numbered files, so a re-run into a populated directory extends
// it instead of colliding with the first write
func (m *Manager) NextIndex(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	next := 0
	for identity := range m.written {
		rest := strings.TrimPrefix(identity, prefix)
		if rest == identity {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return next
}

// Exists reports whether an identity has already been written
func (m *Manager) Exists(identity string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.written[identity]
}

// Save writes the image bytes under the given identity and returns the
// final path. The write goes through a temp file and an atomic rename so
// a crash never leaves a truncated JPEG behind.
func (m *Manager) Save(identity string, data []byte) (string, error) {
	if !m.overwrite && m.Exists(identity) {
		return "", fmt.Errorf("output %s already exists", identity)
	}

	filename := filepath.Join(m.outputDir, identity+".jpg")
	tempFile := filename + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write image data: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.written[identity] = true
	m.mu.Unlock()

	return filename, nil
}

// Dir returns the managed output directory
func (m *Manager) Dir() string {
	return m.outputDir
}
