// Package settings stores proptrans user credentials.
//
// Credentials live in the XDG data directory:
//
//	$XDG_DATA_HOME/proptrans/auth.json  (default: ~/.local/share/proptrans/auth.json)
//
// The file is a JSON object keyed by provider ID. Each value holds an API key
// and, depending on the provider, a base URL (custom-openai) or an account
// ID (cloudflare). File permissions are 0600.
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. PROPTRANS_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	dataDirName = "proptrans"
	fileName    = "auth.json"

	// APIKeyEnv overrides the stored key of any provider.
	APIKeyEnv = "PROPTRANS_API_KEY"
	// AccountIDEnv overrides the stored Cloudflare account ID.
	AccountIDEnv = "PROPTRANS_CF_ACCOUNT_ID"
)

// Info is the credential entry stored per provider.
type Info struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`

	// BaseURL is the endpoint of a custom OpenAI-compatible provider.
	BaseURL string `json:"baseUrl,omitempty"`
	// AccountID is the Cloudflare account that owns the Workers AI binding.
	AccountID string `json:"accountId,omitempty"`
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// DataDir returns the proptrans data directory, honouring $XDG_DATA_HOME.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// Providers returns the provider IDs present in the store, sorted.
func (s Store) Providers() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Update applies fn to the entry of a provider, creating an "api" entry
// when none exists, and saves the store.
func Update(providerID string, fn func(info *Info)) error {
	store := Load()
	info := store[providerID]
	if info == nil {
		info = &Info{Type: "api"}
	}
	fn(info)
	store[providerID] = info
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// APIKey resolves the key for a provider: flag, then environment, then store.
func APIKey(providerID, flagValue string) string {
	return resolve(providerID, flagValue, APIKeyEnv, func(info *Info) string { return info.Key })
}

// AccountID resolves the Cloudflare account ID the same way as APIKey.
func AccountID(providerID, flagValue string) string {
	return resolve(providerID, flagValue, AccountIDEnv, func(info *Info) string { return info.AccountID })
}

func resolve(providerID, flagValue, env string, field func(*Info) string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if info := Get(providerID); info != nil {
		return field(info)
	}
	return ""
}

// BaseURL returns the stored base URL for a provider, or "".
func BaseURL(providerID string) string {
	if info := Get(providerID); info != nil {
		return info.BaseURL
	}
	return ""
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
