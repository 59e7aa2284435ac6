package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"boykot-backend/internal/store"
)

func DecodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// BearerToken extracts the session token from the Authorization header.
// A "Bearer " prefix is accepted but not required, matching the client.
// "Bearer" glued to the token without a space is a malformed scheme, not a
// bare token, and is rejected.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("missing token")
	}
	if rest, ok := strings.CutPrefix(header, "Bearer"); ok {
		token, spaced := strings.CutPrefix(rest, " ")
		if !spaced {
			return "", fmt.Errorf("malformed authorization header")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", fmt.Errorf("missing token")
		}
		return token, nil
	}
	return header, nil
}

// QueryPage reads limit/cursor query parameters into a store page.
func QueryPage(r *http.Request, defaultSize, maxSize int) store.Page {
	page := store.Page{Size: defaultSize, Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = n
		}
	}
	if maxSize > 0 && page.Size > maxSize {
		page.Size = maxSize
	}
	return page
}
