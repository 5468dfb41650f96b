package shared

import (
	"context"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// LoadTags returns the user's tags, or the default set when the source is
// missing, fails, or has nothing for the user.
// This centralizes the common pattern of:
//
//	tags, err := source.QueryTags(ctx, userID)
//	if err != nil || len(tags) == 0 { tags = domain.DefaultTags() }
func LoadTags(ctx context.Context, source domain.TagSource, userID string, log domain.Logger) []domain.Tag {
	if source == nil {
		return domain.DefaultTags()
	}
	tags, err := source.QueryTags(ctx, userID)
	if err != nil {
		log.Warn(userID, "tags", "query tags failed, using defaults: "+err.Error())
		return domain.DefaultTags()
	}
	if len(tags) == 0 {
		return domain.DefaultTags()
	}
	return tags
}
