package handlers

import (
	"net/http"
	"testing"

	"kinnect/internal/database"
	"kinnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	server := setupTestServer(t)

	// Password must contain a letter and a number
	status, _ := doJSON(t, server, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "passwordonly",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, server, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "passw0rd1",
	})
	assert.Equal(t, http.StatusCreated, status)

	// Duplicate username or email is rejected
	status, _ = doJSON(t, server, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "passw0rd1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, server, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "passw0rd1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := setupTestServer(t)
	registerAndLogin(t, server, "alice", "alice@example.com")

	status, _ := doJSON(t, server, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpass1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, server, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "passw0rd1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthenticationGate(t *testing.T) {
	server := setupTestServer(t)

	status, _ := doJSON(t, server, http.MethodGet, "/api/medications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, server, http.MethodGet, "/api/medications", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetCurrentUserStaleGroupReference(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")
	group := createGroup(t, server, token)

	// Remove the group row behind the user's back; the reference is stale
	require.NoError(t, database.GetDB().Delete(&models.Group{}, "id = ?", group.ID).Error)

	me := getMe(t, server, token)
	assert.Nil(t, me.Group)
}

func TestGetCurrentUserGroupLoadFailure(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")
	createGroup(t, server, token)

	// Break the group store; the failure must surface instead of reading as
	// "no group"
	require.NoError(t, database.GetDB().Migrator().DropTable(&models.Group{}))

	status, _ := doJSON(t, server, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

// Deleting an account wipes the group's shared data but leaves the group
// record and remaining members untouched
func TestDeleteAccountCascade(t *testing.T) {
	server := setupTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice", "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob", "bob@example.com")

	group := createGroup(t, server, aliceToken)
	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": group.InviteCode,
	})
	require.Equal(t, http.StatusOK, status)

	createMedication(t, server, aliceToken, "Aspirin", "100mg", "Bob Sr.")
	createAppointment(t, server, aliceToken, "Checkup")

	status, body := doJSON(t, server, http.MethodDelete, "/api/users/me", aliceToken, nil)
	require.Equal(t, http.StatusOK, status, "delete account failed: %s", body)

	// Alice's token no longer resolves to a user
	status, _ = doJSON(t, server, http.MethodGet, "/api/users/me", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Shared data is gone
	assert.Empty(t, listMedications(t, server, bobToken))

	// But the group survives with its invite code and remaining member
	me := getMe(t, server, bobToken)
	require.NotNil(t, me.Group)
	assert.Equal(t, group.ID, me.Group.ID)
	assert.Equal(t, group.InviteCode, me.Group.InviteCode)
	assert.Contains(t, me.Group.Members, me.ID)
}

func TestDeleteAccountWithoutGroup(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	status, _ := doJSON(t, server, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, status)

	// A second delete with the stale token reports not found
	status, _ = doJSON(t, server, http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
