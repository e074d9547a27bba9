package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emsdesk/emsdesk/pkg/authsdk"
)

// TestListUsersRequiresAdmin verifies the user listing is admin-only and
// pagination and search behave.
func TestListUsersRequiresAdmin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := t.Context()

	admin := registerUser(t, client, "Ada", "Quinn", "ada.quinn@example.com", "ADMIN")
	patient := registerUser(t, client, "Ben", "Stone", "ben.stone@example.com", "")

	patientSession := loginUser(t, client, patient.Username)
	_, err := patientSession.ListUsers(ctx, "", 0, 0)
	assertAPIError(t, err, http.StatusForbidden, "Patient listing users")

	adminSession := loginUser(t, client, admin.Username)

	page, err := adminSession.ListUsers(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	require.Len(t, page.Results, 2)

	// Pagination
	paged, err := adminSession.ListUsers(ctx, "", 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, paged.Count)
	require.Equal(t, 2, paged.Page)
	require.Equal(t, 2, paged.TotalPages)
	require.Len(t, paged.Results, 1)

	// Case-insensitive search across names and email
	found, err := adminSession.ListUsers(ctx, "STONE", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, found.Count)
	require.Equal(t, patient.Username, found.Results[0].Username)
}
