package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	// Use mock manager for reliable testing
	manager, mockStore := NewMockManager()

	creds := &Credentials{
		Name:         "testprofile",
		APIKey:       "AIzaTestKey1234567890",
		EmbedKey:     "AIzaEmbedKey0987654321",
		LastModified: time.Now(),
	}

	err := manager.Store(creds)
	if err != nil {
		t.Errorf("Failed to store credentials: %v", err)
	}

	retrieved, err := manager.Retrieve("testprofile")
	if err != nil {
		t.Errorf("Failed to retrieve credentials: %v", err)
	}

	if retrieved.Name != creds.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, creds.Name)
	}
	if retrieved.APIKey != creds.APIKey {
		t.Errorf("APIKey mismatch: got %s, want %s", retrieved.APIKey, creds.APIKey)
	}
	if retrieved.EmbedKey != creds.EmbedKey {
		t.Errorf("EmbedKey mismatch: got %s, want %s", retrieved.EmbedKey, creds.EmbedKey)
	}

	// Missing API key is rejected
	err = manager.Store(&Credentials{Name: "empty"})
	if err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	err = manager.Delete("testprofile")
	if err != nil {
		t.Errorf("Failed to delete credentials: %v", err)
	}

	_, err = manager.Retrieve("testprofile")
	if err == nil {
		t.Error("Expected error retrieving deleted credentials")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 profiles after deletion, got %d", mockStore.Count())
	}
}

func TestManagerDefaultsProfileName(t *testing.T) {
	manager, _ := NewMockManager()

	err := manager.Store(&Credentials{APIKey: "AIzaNoName"})
	if err != nil {
		t.Fatalf("Failed to store credentials: %v", err)
	}

	retrieved, err := manager.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve default profile: %v", err)
	}
	if retrieved.Name != DefaultProfile {
		t.Errorf("Expected default profile name, got %s", retrieved.Name)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_creds.enc")

	// Set test passphrase
	os.Setenv("STREETGRAB_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("STREETGRAB_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	creds := &Credentials{
		Name:   "encrypted_profile",
		APIKey: "encrypted_api_key_value",
	}

	err = store.Store(creds)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("encrypted_profile")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.APIKey != creds.APIKey {
		t.Errorf("APIKey mismatch after encryption/decryption")
	}

	// Verify file is actually encrypted
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Contains(fileContent, []byte("encrypted_api_key_value")) {
		t.Error("File contains plaintext API key")
	}
}

func TestEncryptedFileStoreDelete(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_creds.enc")

	os.Setenv("STREETGRAB_PASSPHRASE", "test_passphrase_delete")
	defer os.Unsetenv("STREETGRAB_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	if err := store.Store(&Credentials{Name: "only", APIKey: "k"}); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("only"); err != nil {
		t.Errorf("Failed to delete credentials: %v", err)
	}

	// Last profile removed: file should be gone too
	if _, err := os.Stat(tempFile); !os.IsNotExist(err) {
		t.Error("Expected credentials file to be removed after last delete")
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("STREETGRAB_API_KEY", "env_api_key")
	os.Setenv("STREETGRAB_EMBED_KEY", "env_embed_key")
	defer os.Unsetenv("STREETGRAB_API_KEY")
	defer os.Unsetenv("STREETGRAB_EMBED_KEY")

	store := NewEnvironmentStore()

	creds, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if creds.APIKey != "env_api_key" {
		t.Errorf("APIKey mismatch: got %s, want env_api_key", creds.APIKey)
	}
	if creds.EmbedKey != "env_embed_key" {
		t.Errorf("EmbedKey mismatch: got %s, want env_embed_key", creds.EmbedKey)
	}

	// Writes are not supported
	err = store.Store(&Credentials{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestEnvironmentStoreGoogleFallback(t *testing.T) {
	os.Unsetenv("STREETGRAB_API_KEY")
	os.Setenv("GOOGLE_MAPS_API_KEY", "google_fallback_key")
	defer os.Unsetenv("GOOGLE_MAPS_API_KEY")

	store := NewEnvironmentStore()

	creds, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if creds.APIKey != "google_fallback_key" {
		t.Errorf("APIKey mismatch: got %s, want google_fallback_key", creds.APIKey)
	}
}

func TestManagerFallbackOrder(t *testing.T) {
	// First store errors on write, second accepts
	failing := NewMockStore()
	failing.StoreError = ErrStoreUnavailable
	working := NewMockStore()

	manager := NewMockManagerWithStores(failing, working)

	err := manager.Store(&Credentials{Name: "fallback", APIKey: "key"})
	if err != nil {
		t.Fatalf("Failed to store via fallback: %v", err)
	}

	if failing.Count() != 0 {
		t.Error("Failing store should hold nothing")
	}
	if working.Count() != 1 {
		t.Error("Working store should hold the credentials")
	}

	retrieved, err := manager.Retrieve("fallback")
	if err != nil {
		t.Fatalf("Failed to retrieve via fallback: %v", err)
	}
	if retrieved.APIKey != "key" {
		t.Errorf("APIKey mismatch: got %s, want key", retrieved.APIKey)
	}
}
