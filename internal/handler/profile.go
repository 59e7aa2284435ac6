package handler

import (
	"net/http"

	"boykot-backend/internal/identity"
	"boykot-backend/internal/middleware"
	"boykot-backend/internal/utils"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	account, err := h.Resolver.Account(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, account.Profile)
}

type updateProfileRequest struct {
	Nickname *string `json:"nickname,omitempty"`
	AvatarID *string `json:"avatarId,omitempty"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req updateProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := h.Resolver.UpdateProfile(r.Context(), userID, identity.ProfileUpdate{
		Nickname: req.Nickname,
		AvatarID: req.AvatarID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	account, err := h.Resolver.Account(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, account.Profile)
}

// UploadAvatar accepts a multipart image, hosts it on Cloudinary and records
// the new avatar across the user's records.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.Avatars == nil {
		utils.Error(w, http.StatusServiceUnavailable, "avatar uploads are not configured")
		return
	}

	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "missing avatar file")
		return
	}
	defer file.Close()

	avatarID, url, err := h.Avatars.UploadAvatar(r.Context(), file, userID)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "avatar upload failed")
		return
	}

	if err := h.Resolver.SetAvatarURL(r.Context(), userID, avatarID, url); err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, map[string]string{"avatarId": avatarID, "url": url})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	settings, err := h.Resolver.Settings(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, settings)
}

type updateSettingsRequest struct {
	NotificationsEnabled *bool `json:"notificationsEnabled,omitempty"`
	ShowOnLeaderboard    *bool `json:"showOnLeaderboard,omitempty"`
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req updateSettingsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	settings, err := h.Resolver.UpdateSettings(r.Context(), userID, identity.SettingsUpdate{
		NotificationsEnabled: req.NotificationsEnabled,
		ShowOnLeaderboard:    req.ShowOnLeaderboard,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, settings)
}
