package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"boykot-backend/internal/leaderboard"
	"boykot-backend/internal/middleware"
	"boykot-backend/internal/utils"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = leaderboard.PeriodAllTime
	}

	page, err := h.Leaderboard.List(r.Context(), period, utils.QueryPage(r, 50, 100))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, page)
}

func (h *Handler) GetUserRank(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	period := r.URL.Query().Get("period")
	if period == "" {
		period = leaderboard.PeriodAllTime
	}

	rank, err := h.Leaderboard.Rank(r.Context(), userID, period)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, rank)
}

type addScoreRequest struct {
	Points int `json:"points"`
}

func (h *Handler) AddScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req addScoreRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Points <= 0 {
		utils.Error(w, http.StatusBadRequest, "points must be positive")
		return
	}

	entry, err := h.Leaderboard.AddScore(r.Context(), userID, req.Points)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, entry)
}
