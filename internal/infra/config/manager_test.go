package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

func TestManager_GetLocalConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taskbot.toml")
		configContent := "[log]\nlevel = \"debug\""
		require.NoError(t, os.WriteFile(path, []byte(configContent), 0o644))

		manager := NewManager(NewLoaderWithGlobalDir(path, ""))
		info := manager.GetLocalConfigInfo()

		assert.Equal(t, path, info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taskbot.toml")

		manager := NewManager(NewLoaderWithGlobalDir(path, ""))
		info := manager.GetLocalConfigInfo()

		assert.Equal(t, path, info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		globalDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		require.NoError(t, os.WriteFile(filepath.Join(globalDir, domain.ConfigFileName), []byte(configContent), 0o644))

		manager := NewManager(NewLoaderWithGlobalDir("", globalDir))
		info := manager.GetGlobalConfigInfo()

		assert.Equal(t, filepath.Join(globalDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns empty info when global dir is empty", func(t *testing.T) {
		manager := NewManager(NewLoaderWithGlobalDir("", ""))
		info := manager.GetGlobalConfigInfo()

		assert.Empty(t, info.Path)
		assert.False(t, info.Exists)
	})
}

func TestManager_InitGlobalConfig(t *testing.T) {
	t.Run("creates config file and directory", func(t *testing.T) {
		globalDir := filepath.Join(t.TempDir(), "taskbot")
		manager := NewManager(NewLoaderWithGlobalDir("", globalDir))

		path, err := manager.InitGlobalConfig()

		require.NoError(t, err)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, domain.ConfigTemplate(), string(content))
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		globalDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(globalDir, domain.ConfigFileName), []byte("x"), 0o644))
		manager := NewManager(NewLoaderWithGlobalDir("", globalDir))

		_, err := manager.InitGlobalConfig()

		require.ErrorIs(t, err, domain.ErrConfigExists)
	})

	t.Run("no global dir", func(t *testing.T) {
		manager := NewManager(NewLoaderWithGlobalDir("", ""))

		_, err := manager.InitGlobalConfig()

		require.Error(t, err)
	})
}

func TestManager_InitLocalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskbot.toml")
	manager := NewManager(NewLoaderWithGlobalDir(path, ""))

	got, err := manager.InitLocalConfig()

	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.True(t, manager.GetLocalConfigInfo().Exists)

	_, err = manager.InitLocalConfig()
	require.ErrorIs(t, err, domain.ErrConfigExists)
}
