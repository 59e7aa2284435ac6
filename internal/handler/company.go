package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"boykot-backend/internal/directory"
	"boykot-backend/internal/utils"
)

func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.Directory.List(r.Context(), directory.ListOptions{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Page:     utils.QueryPage(r, 20, 100),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, page)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.Directory.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	utils.Success(w, company)
}
