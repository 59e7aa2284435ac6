package handler

import (
	"net/http"

	"boykot-backend/internal/utils"
)

// RootHandler lists the available API routes.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "Boykot API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				{"method": "POST", "path": "/auth/check-username", "description": "Username availability check"},
				{"method": "POST", "path": "/auth/register", "description": "Register a new account"},
				{"method": "POST", "path": "/auth/login", "description": "Log in"},
				{"method": "POST", "path": "/auth/logout", "description": "Log out"},
				{"method": "POST", "path": "/auth/session", "description": "Begin an anonymous session"},
				{"method": "GET", "path": "/auth/session", "description": "Resolve the current session"},
			},
			"profile": []map[string]string{
				{"method": "GET", "path": "/profile", "description": "Get own profile"},
				{"method": "PATCH", "path": "/profile", "description": "Update nickname/avatar"},
				{"method": "POST", "path": "/profile/avatar", "description": "Upload avatar image"},
				{"method": "GET", "path": "/settings", "description": "Get own settings"},
				{"method": "PATCH", "path": "/settings", "description": "Update settings"},
			},
			"leaderboard": []map[string]string{
				{"method": "GET", "path": "/leaderboard", "description": "Leaderboard page (period, limit, cursor)"},
				{"method": "GET", "path": "/leaderboard/users/{userId}", "description": "User rank and percentile"},
				{"method": "POST", "path": "/leaderboard/score", "description": "Award points to the caller"},
			},
			"companies": []map[string]string{
				{"method": "GET", "path": "/companies", "description": "Directory listing (category, search, cursor)"},
				{"method": "GET", "path": "/companies/{id}", "description": "Company details"},
			},
			"feed": []map[string]string{
				{"method": "GET", "path": "/announcements", "description": "Announcements, newest first"},
				{"method": "GET", "path": "/channels", "description": "Available channels"},
				{"method": "GET", "path": "/channels/subscriptions", "description": "Own subscriptions"},
				{"method": "POST", "path": "/channels/{id}/subscribe", "description": "Subscribe to a channel"},
				{"method": "DELETE", "path": "/channels/{id}/subscribe", "description": "Unsubscribe from a channel"},
			},
		},
	}

	utils.Success(w, routes)
}
