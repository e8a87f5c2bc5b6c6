package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and mainly serves CI environments and one-off runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Credentials, error) {
	apiKey := os.Getenv("STREETGRAB_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	}
	embedKey := os.Getenv("STREETGRAB_EMBED_KEY")

	if apiKey == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables don't carry a profile name
	if name == "" {
		name = DefaultProfile
	}

	return &Credentials{
		Name:         name,
		APIKey:       apiKey,
		EmbedKey:     embedKey,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("STREETGRAB_API_KEY") != "" || os.Getenv("GOOGLE_MAPS_API_KEY") != ""
}
