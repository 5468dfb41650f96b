package shared

import (
	"context"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// Audit writes rec to the audit log. Failures are logged and swallowed;
// they never undo state changes already applied.
func Audit(ctx context.Context, p domain.Persistence, log domain.Logger, rec domain.MessageRecord) {
	if p == nil {
		return
	}
	if err := p.UpsertMessage(ctx, rec); err != nil {
		log.Warn(rec.UserID, "persist", "upsert message failed: "+err.Error())
	}
}

// SaveFavorite mirrors a favorite template to the audit log, best effort.
func SaveFavorite(ctx context.Context, p domain.Persistence, log domain.Logger, userID string, fav domain.FavoriteTask) {
	if p == nil {
		return
	}
	if err := p.SaveFavorite(ctx, userID, fav); err != nil {
		log.Warn(userID, "persist", "save favorite "+fav.ID+" failed: "+err.Error())
	}
}
