package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ChangePassword updates the authenticated user's password. Users without
// two-factor authentication prove identity with their old password; users
// with a verified authenticator pass a current TOTP code instead and leave
// oldPassword empty.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, totpCode, newPassword string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/change-user-password", map[string]string{
		"old_password": oldPassword,
		"token":        totpCode,
		"new_password": newPassword,
	})
	if err != nil {
		return err
	}

	return expectStatus(resp, http.StatusOK)
}

// ListUsers retrieves one page of accounts, optionally filtered by a
// case-insensitive search over username, email, and names. Requires the
// ADMIN role. Zero page or pageSize use the server defaults.
func (s *Session) ListUsers(ctx context.Context, search string, page, pageSize int) (*UserPage, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	path := "/v1/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var users UserPage
	if err := decodeEnvelope(resp, &users, http.StatusOK); err != nil {
		return nil, err
	}

	return &users, nil
}
