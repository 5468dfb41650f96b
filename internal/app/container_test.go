package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
	"github.com/xiaowang-jiji/taskbot/internal/infra/jsonstore"
	"github.com/xiaowang-jiji/taskbot/internal/infra/sqlstore"
	"github.com/xiaowang-jiji/taskbot/internal/infra/tagfile"
)

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	cfg := domain.NewDefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "taskbot.json")
	return cfg
}

func TestNew_JSONStore(t *testing.T) {
	// Setup
	cfg := testConfig(t)
	cfg.Assistant.APIKey = "sk-test"

	// Execute
	c, err := New(context.Background(), cfg, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.IsType(t, &jsonstore.Store{}, c.Persistence)
	assert.NotNil(t, c.TagWriter)
	assert.NotNil(t, c.Assistant)
	assert.NotNil(t, c.Ticketer)
	assert.NotNil(t, c.WebServer())
	_, err = os.Stat(cfg.Store.Path)
	assert.NoError(t, err)
}

func TestNew_SQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = domain.StoreDriverSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "audit.db")

	c, err := New(context.Background(), cfg, &bytes.Buffer{})

	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, c.Persistence)
	assert.NoError(t, c.Close())
}

func TestNew_NoStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = domain.StoreDriverNone
	var stderr bytes.Buffer

	c, err := New(context.Background(), cfg, &stderr)

	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Nil(t, c.Persistence)
	assert.Nil(t, c.TagWriter)
	assert.Nil(t, c.Assistant)
	assert.Contains(t, stderr.String(), "no assistant api key")
}

func TestNew_TagFile(t *testing.T) {
	// Setup
	cfg := testConfig(t)
	cfg.Tags.File = filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(cfg.Tags.File, []byte("default:\n  - name: 健身\n"), 0o600))

	// Execute
	c, err := New(context.Background(), cfg, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	require.IsType(t, tagfile.Chain{}, c.Tags)
	tags, err := c.Tags.QueryTags(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "健身", tags[0].Name)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *domain.Config)
	}{
		{"postgres without dsn", func(cfg *domain.Config) { cfg.Store.Driver = domain.StoreDriverPostgres }},
		{"unknown driver", func(cfg *domain.Config) { cfg.Store.Driver = "mongo" }},
		{"missing tag file", func(cfg *domain.Config) { cfg.Tags.File = "/nonexistent/tags.yaml" }},
		{"bad sync key", func(cfg *domain.Config) { cfg.Sync.Key = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(cfg)

			_, err := New(context.Background(), cfg, &bytes.Buffer{})

			require.Error(t, err)
		})
	}
}

func TestUUIDGenerator(t *testing.T) {
	ids := uuidGenerator{}
	a, b := ids.NewID(), ids.NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
