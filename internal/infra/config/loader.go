// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Environment variables that override file settings.
const (
	EnvPort               = "PORT"
	EnvChannelSecret      = "LINE_CHANNEL_SECRET"
	EnvChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"
	EnvOpenAIKey          = "OPENAI_API_KEY"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvSyncKey            = "TASKBOT_SYNC_KEY"
)

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	localPath     string // Path to the local config file
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskbot)
	explicit      bool   // localPath was given by the user and must exist
}

// NewLoader creates a new Loader.
// An empty path means ./taskbot.toml, which may be absent.
func NewLoader(path string) *Loader {
	return NewLoaderWithGlobalDir(path, defaultGlobalConfigDir())
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(path, globalConfDir string) *Loader {
	l := &Loader{
		localPath:     path,
		globalConfDir: globalConfDir,
		explicit:      path != "",
	}
	if path == "" {
		l.localPath = domain.LocalConfigFileName
	}
	return l
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// GlobalPath returns the global config file path, or "" when unavailable.
func (l *Loader) GlobalPath() string {
	if l.globalConfDir == "" {
		return ""
	}
	return filepath.Join(l.globalConfDir, domain.ConfigFileName)
}

// LocalPath returns the local config file path.
func (l *Loader) LocalPath() string {
	return l.localPath
}

// Load returns the effective configuration.
// Precedence, lowest first: defaults, global file, local file, environment.
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if path := l.GlobalPath(); path != "" {
		if err := applyFile(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyFile(cfg, l.localPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) || l.explicit {
			return nil, err
		}
	}

	applyEnv(cfg, os.Getenv)
	sort.Strings(cfg.Warnings)
	return cfg, nil
}

// applyFile reads a TOML file and applies every key it sets onto cfg.
func applyFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	applyRaw(cfg, raw)
	return nil
}

// applyRaw applies a parsed TOML document onto cfg and collects warnings.
func applyRaw(cfg *domain.Config, raw map[string]any) {
	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		p := sectionParser{cfg: cfg, section: section}
		for k, v := range m {
			p.apply(k, v)
		}
	}
}

// sectionParser applies the keys of one [section].
type sectionParser struct {
	cfg     *domain.Config
	section string
}

func (p *sectionParser) apply(key string, v any) {
	cfg := p.cfg
	switch p.section + "." + key {
	case "server.addr":
		p.str(&cfg.Server.Addr, key, v)
	case "server.webhook_path":
		p.str(&cfg.Server.WebhookPath, key, v)
	case "line.channel_secret":
		p.str(&cfg.LINE.ChannelSecret, key, v)
	case "line.channel_access_token":
		p.str(&cfg.LINE.ChannelAccessToken, key, v)
	case "line.api_base":
		p.str(&cfg.LINE.APIBase, key, v)
	case "links.edit_url":
		p.str(&cfg.Links.EditURL, key, v)
	case "links.records_url":
		p.str(&cfg.Links.RecordsURL, key, v)
	case "links.favorites_url":
		p.str(&cfg.Links.FavoritesURL, key, v)
	case "assistant.api_key":
		p.str(&cfg.Assistant.APIKey, key, v)
	case "assistant.base_url":
		p.str(&cfg.Assistant.BaseURL, key, v)
	case "assistant.model":
		p.str(&cfg.Assistant.Model, key, v)
	case "assistant.system_prompt":
		p.str(&cfg.Assistant.SystemPrompt, key, v)
	case "assistant.timeout":
		p.duration(&cfg.Assistant.Timeout, key, v)
	case "store.driver":
		p.str(&cfg.Store.Driver, key, v)
		switch cfg.Store.Driver {
		case domain.StoreDriverJSON, domain.StoreDriverSQLite, domain.StoreDriverPostgres, domain.StoreDriverNone:
		default:
			p.warn("unknown driver %q in [store], using %q", cfg.Store.Driver, domain.StoreDriverJSON)
			cfg.Store.Driver = domain.StoreDriverJSON
		}
	case "store.path":
		p.str(&cfg.Store.Path, key, v)
	case "store.dsn":
		p.str(&cfg.Store.DSN, key, v)
	case "tags.file":
		p.str(&cfg.Tags.File, key, v)
	case "dialogue.tag_timeout":
		p.duration(&cfg.Dialogue.TagTimeout, key, v)
	case "sync.key":
		p.str(&cfg.Sync.Key, key, v)
	case "sync.ticket_ttl":
		p.duration(&cfg.Sync.TicketTTL, key, v)
	case "log.level":
		p.str(&cfg.Log.Level, key, v)
	case "log.dir":
		p.str(&cfg.Log.Dir, key, v)
	default:
		switch p.section {
		case "server", "line", "links", "assistant", "store", "tags", "dialogue", "sync", "log":
			p.warn("unknown key in [%s]: %s", p.section, key)
		default:
			// Report an unknown section once, from its first key.
			msg := fmt.Sprintf("unknown section: %s", p.section)
			for _, w := range cfg.Warnings {
				if w == msg {
					return
				}
			}
			cfg.Warnings = append(cfg.Warnings, msg)
		}
	}
}

func (p *sectionParser) str(dst *string, key string, v any) {
	s, ok := v.(string)
	if !ok {
		p.warn("[%s].%s must be a string", p.section, key)
		return
	}
	*dst = s
}

// duration accepts a Go duration string ("30s", "5m") or a number of seconds.
func (p *sectionParser) duration(dst *time.Duration, key string, v any) {
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil || parsed < 0 {
			p.warn("[%s].%s: invalid duration %q", p.section, key, d)
			return
		}
		*dst = parsed
	case int64:
		if d < 0 {
			p.warn("[%s].%s: invalid duration %d", p.section, key, d)
			return
		}
		*dst = time.Duration(d) * time.Second
	default:
		p.warn("[%s].%s must be a duration string", p.section, key)
	}
}

func (p *sectionParser) warn(format string, args ...any) {
	p.cfg.Warnings = append(p.cfg.Warnings, fmt.Sprintf(format, args...))
}

// applyEnv applies environment overrides onto cfg.
func applyEnv(cfg *domain.Config, getenv func(string) string) {
	if port := getenv(EnvPort); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if v := getenv(EnvChannelSecret); v != "" {
		cfg.LINE.ChannelSecret = v
	}
	if v := getenv(EnvChannelAccessToken); v != "" {
		cfg.LINE.ChannelAccessToken = v
	}
	if v := getenv(EnvOpenAIKey); v != "" {
		cfg.Assistant.APIKey = v
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		cfg.Store.DSN = v
		if cfg.Store.Driver == domain.StoreDriverJSON {
			cfg.Store.Driver = domain.StoreDriverPostgres
		}
	}
	if v := getenv(EnvSyncKey); v != "" {
		cfg.Sync.Key = v
	}
}
