package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"boykot-backend/internal/middleware"
	"boykot-backend/internal/utils"
)

func (h *Handler) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, next, err := h.Feed.Announcements(r.Context(),
		r.URL.Query().Get("channel"), utils.QueryPage(r, 20, 100))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, map[string]interface{}{
		"announcements": announcements,
		"nextCursor":    next,
	})
}

func (h *Handler) GetChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Feed.Channels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, channels)
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	sub, err := h.Feed.Subscribe(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, sub)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	removed, err := h.Feed.Unsubscribe(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, map[string]bool{"removed": removed})
}

func (h *Handler) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	subs, err := h.Feed.Subscriptions(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, subs)
}
