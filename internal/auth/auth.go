// Package auth stores and resolves API keys for the configured server.
//
// Keys can come from the TAPI_KEY environment variable, from api.api_key
// in a config file, or from the credential store written by
// `tcli auth login`. Stored keys live in the system keyring when one is
// available, keyed by server origin so profiles keep separate logins.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/output"
)

// Source identifies where the active API key came from.
type Source string

const (
	SourceNone    Source = ""
	SourceEnv     Source = "env"
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
	SourceFile    Source = "file"
)

// Manager resolves the API key for the configured server.
type Manager struct {
	cfg   *config.Config
	store *Store
}

// NewManager creates an auth manager backed by the default store.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg, store: NewStore(config.GlobalConfigDir())}
}

// NewManagerWithStore creates an auth manager with an explicit store.
func NewManagerWithStore(cfg *config.Config, store *Store) *Manager {
	return &Manager{cfg: cfg, store: store}
}

func (m *Manager) origin() string {
	return config.NormalizeBaseURL(m.cfg.BaseURL)
}

// Key returns the active API key and where it came from.
// Precedence: TAPI_KEY env, then api.api_key from config, then the
// credential store. Config folds the env override into APIKey already;
// Sources tells the two apart.
func (m *Manager) Key() (string, Source) {
	if m.cfg.APIKey != "" {
		if m.cfg.Sources["api.api_key"] == string(config.SourceEnv) {
			return m.cfg.APIKey, SourceEnv
		}
		return m.cfg.APIKey, SourceConfig
	}

	creds, err := m.store.Load(m.origin())
	if err != nil || creds.APIKey == "" {
		return "", SourceNone
	}
	if m.store.UsingKeyring() {
		return creds.APIKey, SourceKeyring
	}
	return creds.APIKey, SourceFile
}

// RequireKey returns the active API key, or an auth error telling the
// user how to provide one.
func (m *Manager) RequireKey() (string, error) {
	key, _ := m.Key()
	if key == "" {
		return "", &output.Error{
			Code:    output.CodeAuth,
			Message: "API key not configured",
			Hint:    fmt.Sprintf("Set TAPI_KEY environment variable, run 'tcli auth login', or add api.api_key to %s", config.GlobalConfigPath()),
		}
	}
	return key, nil
}

// IsAuthenticated reports whether any key source yields a key.
func (m *Manager) IsAuthenticated() bool {
	key, _ := m.Key()
	return key != ""
}

// SaveKey stores a key for the configured server.
func (m *Manager) SaveKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return output.ErrUsage("API key cannot be empty")
	}
	return m.store.Save(m.origin(), &Credentials{
		APIKey:  strings.TrimSpace(apiKey),
		SavedAt: time.Now().Unix(),
	})
}

// StoredCredentials returns what the store holds for the configured
// server, ignoring env and config sources.
func (m *Manager) StoredCredentials() (*Credentials, error) {
	return m.store.Load(m.origin())
}

// Logout removes stored credentials for the configured server.
func (m *Manager) Logout() error {
	return m.store.Delete(m.origin())
}

// UsingKeyring reports which backend the store selected.
func (m *Manager) UsingKeyring() bool {
	return m.store.UsingKeyring()
}

// GetStore returns the credential store.
func (m *Manager) GetStore() *Store {
	return m.store
}

// MaskKey renders a key safe for display, keeping only the edges.
func MaskKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + "..." + apiKey[len(apiKey)-4:]
}
