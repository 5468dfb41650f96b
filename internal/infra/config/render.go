package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

const masked = "********"

// Render returns cfg as a TOML document with secrets masked.
func Render(cfg *domain.Config) (string, error) {
	doc := map[string]any{
		"server": map[string]any{
			"addr":         cfg.Server.Addr,
			"webhook_path": cfg.Server.WebhookPath,
		},
		"line": map[string]any{
			"channel_secret":       mask(cfg.LINE.ChannelSecret),
			"channel_access_token": mask(cfg.LINE.ChannelAccessToken),
			"api_base":             cfg.LINE.APIBase,
		},
		"links": map[string]any{
			"edit_url":      cfg.Links.EditURL,
			"records_url":   cfg.Links.RecordsURL,
			"favorites_url": cfg.Links.FavoritesURL,
		},
		"assistant": map[string]any{
			"api_key":       mask(cfg.Assistant.APIKey),
			"base_url":      cfg.Assistant.BaseURL,
			"model":         cfg.Assistant.Model,
			"system_prompt": cfg.Assistant.SystemPrompt,
			"timeout":       cfg.Assistant.Timeout.String(),
		},
		"store": map[string]any{
			"driver": cfg.Store.Driver,
			"path":   cfg.Store.Path,
			"dsn":    mask(cfg.Store.DSN),
		},
		"tags": map[string]any{
			"file": cfg.Tags.File,
		},
		"dialogue": map[string]any{
			"tag_timeout": cfg.Dialogue.TagTimeout.String(),
		},
		"sync": map[string]any{
			"key":        mask(cfg.Sync.Key),
			"ticket_ttl": cfg.Sync.TicketTTL.String(),
		},
		"log": map[string]any{
			"level": cfg.Log.Level,
			"dir":   cfg.Log.Dir,
		},
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return masked
}
