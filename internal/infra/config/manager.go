package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Manager manages configuration files.
type Manager struct {
	loader *Loader
}

// NewManager creates a new Manager for the loader's files.
func NewManager(loader *Loader) *Manager {
	return &Manager{loader: loader}
}

// GetLocalConfigInfo returns information about the local config file.
func (m *Manager) GetLocalConfigInfo() domain.ConfigInfo {
	return getConfigInfo(m.loader.LocalPath())
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	path := m.loader.GlobalPath()
	if path == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(path)
}

// getConfigInfo reads a config file and returns its info.
func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitLocalConfig creates the local config file from the template.
func (m *Manager) InitLocalConfig() (string, error) {
	path := m.loader.LocalPath()
	return path, initConfig(path)
}

// InitGlobalConfig creates the global config file from the template.
func (m *Manager) InitGlobalConfig() (string, error) {
	path := m.loader.GlobalPath()
	if path == "" {
		return "", errors.New("global config directory not available")
	}

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}

	return path, initConfig(path)
}

// initConfig creates a config file with the default template.
func initConfig(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}

	return os.WriteFile(path, []byte(domain.ConfigTemplate()), 0o600)
}
