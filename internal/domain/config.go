package domain

import (
	_ "embed"
	"path/filepath"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigTemplate returns the commented default configuration file.
func ConfigTemplate() string {
	return configTemplateContent
}

// Config file names and locations.
const (
	ConfigFileName      = "config.toml"  // File name inside the global config directory
	LocalConfigFileName = "taskbot.toml" // File name in the working directory
	AppName             = "taskbot"
)

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppName)
}

// ConfigInfo describes one configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Store drivers.
const (
	StoreDriverJSON     = "json"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverNone     = "none"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Server    ServerConfig    `toml:"server"`
	LINE      LINEConfig      `toml:"line"`
	Links     LinksConfig     `toml:"links"`
	Assistant AssistantConfig `toml:"assistant"`
	Store     StoreConfig     `toml:"store"`
	Tags      TagsConfig      `toml:"tags"`
	Sync      SyncConfig      `toml:"sync"`
	Log       LogConfig       `toml:"log"`
	Dialogue  DialogueConfig  `toml:"dialogue"`
}

// ServerConfig holds HTTP settings from [server] section.
type ServerConfig struct {
	Addr        string `toml:"addr"`         // Listen address, e.g. ":3000"
	WebhookPath string `toml:"webhook_path"` // Path of the LINE webhook
}

// LINEConfig holds Messaging API settings from [line] section.
type LINEConfig struct {
	ChannelSecret      string `toml:"channel_secret"`       // Webhook signature key; empty disables the check
	ChannelAccessToken string `toml:"channel_access_token"` // Bearer token for reply/push
	APIBase            string `toml:"api_base"`             // Messaging API base URL
}

// LinksConfig holds the browser surface URLs from [links] section.
type LinksConfig struct {
	EditURL      string `toml:"edit_url"`
	RecordsURL   string `toml:"records_url"`
	FavoritesURL string `toml:"favorites_url"`
}

// AssistantConfig holds the AI completion settings from [assistant] section.
type AssistantConfig struct {
	APIKey       string        `toml:"api_key"`
	BaseURL      string        `toml:"base_url"`
	Model        string        `toml:"model"`
	SystemPrompt string        `toml:"system_prompt"`
	Timeout      time.Duration `toml:"-"` // [assistant].timeout, 0 = no timeout
}

// StoreConfig holds audit-log settings from [store] section.
type StoreConfig struct {
	Driver string `toml:"driver"` // json (default), sqlite, postgres or none
	Path   string `toml:"path"`   // File path for json and sqlite
	DSN    string `toml:"dsn"`    // Connection string for postgres
}

// TagsConfig holds tag settings from [tags] section.
type TagsConfig struct {
	File string `toml:"file"` // YAML file overriding the default tag set
}

// SyncConfig holds browser hand-off settings from [sync] section.
type SyncConfig struct {
	Key       string        `toml:"key"` // 64 hex chars; random per process when empty
	TicketTTL time.Duration `toml:"-"`   // [sync].ticket_ttl
}

// DialogueConfig holds follow-up settings from [dialogue] section.
type DialogueConfig struct {
	TagTimeout time.Duration `toml:"-"` // [dialogue].tag_timeout, 0 = never expires
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	Dir   string `toml:"dir"`   // Log directory; stderr when empty
}

// Default values.
const (
	DefaultAddr             = ":3000"
	DefaultWebhookPath      = "/webhook"
	DefaultLINEAPIBase      = "https://api.line.me/v2/bot"
	DefaultAssistantURL     = "https://api.openai.com/v1/chat/completions"
	DefaultAssistantModel   = "gpt-4o-mini"
	DefaultAssistantTimeout = 30 * time.Second
	DefaultStorePath        = "taskbot.json"
	DefaultTicketTTL        = 24 * time.Hour
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			WebhookPath: DefaultWebhookPath,
		},
		LINE: LINEConfig{
			APIBase: DefaultLINEAPIBase,
		},
		Assistant: AssistantConfig{
			BaseURL:      DefaultAssistantURL,
			Model:        DefaultAssistantModel,
			SystemPrompt: "你是小汪記記，一個幫使用者整理待辦事項的助理。請用繁體中文簡短回答。",
			Timeout:      DefaultAssistantTimeout,
		},
		Store: StoreConfig{
			Driver: StoreDriverJSON,
			Path:   DefaultStorePath,
		},
		Sync: SyncConfig{
			TicketTTL: DefaultTicketTTL,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
