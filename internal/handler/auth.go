package handler

import (
	"net/http"

	"boykot-backend/internal/identity"
	"boykot-backend/internal/middleware"
	"boykot-backend/internal/utils"
)

type checkUsernameRequest struct {
	Username string `json:"username"`
}

// CheckUsername answers the debounced availability probe the registration
// screen issues while the user is typing.
func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req checkUsernameRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	available, err := h.Resolver.CheckUsernameAvailable(r.Context(), req.Username)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, map[string]bool{"available": available})
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	AvatarID        string `json:"avatarId"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := h.Resolver.Register(r.Context(), identity.RegisterInput{
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		AvatarID:        req.AvatarID,
		SessionToken:    req.SessionToken,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, account)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	account, err := h.Resolver.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	utils.Success(w, account)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}
	if err := h.Resolver.Logout(r.Context(), token); err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, map[string]bool{"success": true})
}

// BeginSession hands the onboarding client an anonymous, write-capable
// identity before any username exists. Registration later claims it.
func (h *Handler) BeginSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Begin(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, sess)
}

// CurrentSession resolves the calling token back to its account, used by the
// client at startup to decide the initial screen.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
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
	utils.Success(w, account)
}
