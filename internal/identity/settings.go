package identity

import (
	"context"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/store"
)

// SettingsUpdate is a partial settings mutation; nil fields are left untouched.
type SettingsUpdate struct {
	NotificationsEnabled *bool
	ShowOnLeaderboard    *bool
}

// Settings loads the settings record owned by userID.
func (r *Resolver) Settings(ctx context.Context, userID string) (model.Settings, error) {
	var settings model.Settings
	if err := r.store.GetOne(ctx, store.CollUserSettings, userID, &settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// UpdateSettings applies a partial settings change.
func (r *Resolver) UpdateSettings(ctx context.Context, userID string, upd SettingsUpdate) (model.Settings, error) {
	patch := map[string]interface{}{}
	if upd.NotificationsEnabled != nil {
		patch["notifications.enabled"] = *upd.NotificationsEnabled
	}
	if upd.ShowOnLeaderboard != nil {
		patch["showOnLeaderboard"] = *upd.ShowOnLeaderboard
	}
	if len(patch) == 0 {
		return r.Settings(ctx, userID)
	}

	var settings model.Settings
	if err := r.store.Update(ctx, store.CollUserSettings, userID, patch, &settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// SetAvatarURL records an uploaded avatar's public id and delivery URL across
// the records that duplicate it.
func (r *Resolver) SetAvatarURL(ctx context.Context, userID, avatarID, url string) error {
	return r.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := r.store.Update(ctx, store.CollUserProfiles, userID, map[string]interface{}{
			"avatarId": avatarID,
		}, nil); err != nil {
			return err
		}
		if err := r.store.Update(ctx, store.CollUserSettings, userID, map[string]interface{}{
			"avatar.id":  avatarID,
			"avatar.url": url,
		}, nil); err != nil {
			return err
		}
		return r.store.Update(ctx, store.CollLeaderboard, userID, map[string]interface{}{
			"avatarId": avatarID,
		}, nil)
	})
}
