//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/andela-jare/CP3-DMS/internal/testutil"
	"github.com/stretchr/testify/require"
)

type userResult struct {
	ID       string
	Username string
	Password string
	Token    string
}

// signupTestUser registers a fresh user and returns its id and token.
func signupTestUser(t *testing.T, client *testutil.Client) userResult {
	t.Helper()

	username := testutil.RandomUsername()
	password := "password123"

	resp, err := client.POST("/api/v1/users", map[string]string{
		"username":  username,
		"firstName": "Test",
		"lastName":  "User",
		"email":     testutil.RandomEmail(),
		"password":  password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
		Data  struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	return userResult{
		ID:       result.Data.ID,
		Username: username,
		Password: password,
		Token:    result.Token,
	}
}

// promoteToAdmin flips a user's role to admin directly in the database.
// There is no API path that creates the first admin, so tests bootstrap one
// this way.
func promoteToAdmin(t *testing.T, userID string) {
	t.Helper()

	_, err := testDB.Exec(context.Background(),
		`UPDATE users SET role_id = (SELECT id FROM roles WHERE title = 'admin') WHERE id = $1`,
		userID)
	require.NoError(t, err)
}

// signupAdmin registers a user and promotes it to admin. The returned token
// stays valid because a fresh signup's session marker accepts any token
// signed for the user.
func signupAdmin(t *testing.T, client *testutil.Client) userResult {
	t.Helper()

	user := signupTestUser(t, client)
	promoteToAdmin(t, user.ID)
	return user
}

// createTestDocument creates a document as the given token's user and
// returns its id.
func createTestDocument(t *testing.T, client *testutil.Client, token, title, content, access string) string {
	t.Helper()

	payload := map[string]string{
		"title":   title,
		"content": content,
	}
	if access != "" {
		payload["access"] = access
	}

	resp, err := client.WithToken(token).POST("/api/v1/documents", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}
