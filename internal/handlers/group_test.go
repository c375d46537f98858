package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kinnect/internal/database"
	"kinnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// meResponse mirrors the GET /api/users/me payload
type meResponse struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Group    *models.Group `json:"group"`
}

func getMe(t *testing.T, server *httptest.Server, token string) meResponse {
	t.Helper()
	status, body := doJSON(t, server, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status, "me failed: %s", body)
	var me meResponse
	decodeJSON(t, body, &me)
	return me
}

func createGroup(t *testing.T, server *httptest.Server, token string) models.Group {
	t.Helper()
	status, body := doJSON(t, server, http.MethodPost, "/api/groups", token, nil)
	require.Equal(t, http.StatusOK, status, "create group failed: %s", body)
	var group models.Group
	decodeJSON(t, body, &group)
	return group
}

func TestCreateGroup(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	me := getMe(t, server, token)
	require.Nil(t, me.Group)

	group := createGroup(t, server, token)
	assert.Equal(t, "alice's Family Group", group.Name)
	assert.Equal(t, []string{me.ID}, []string(group.Members))

	require.Len(t, group.InviteCode, models.InviteCodeLength)
	for _, r := range group.InviteCode {
		assert.Contains(t, models.InviteCodeAlphabet, string(r))
	}

	me = getMe(t, server, token)
	require.NotNil(t, me.Group)
	assert.Equal(t, group.ID, me.Group.ID)
}

func TestCreateGroupAlreadyInGroup(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")
	createGroup(t, server, token)

	status, body := doJSON(t, server, http.MethodPost, "/api/groups", token, nil)
	assert.Equal(t, http.StatusBadRequest, status, "expected already-in-group error: %s", body)
}

func TestCreateGroupInviteCodeCollisionRetries(t *testing.T) {
	setupTestServer(t)
	db := database.GetDB()

	taken := models.Group{Name: "existing", Members: []string{"user-1"}, InviteCode: "ABC123"}
	require.NoError(t, db.Create(&taken).Error)

	// Force a collision on the first attempt; the insert must recover inside
	// the same transaction and land with a fresh code
	colliding := models.Group{Name: "fresh", Members: []string{"user-2"}, InviteCode: "ABC123"}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := createGroupWithCode(tx, &colliding); err != nil {
			return err
		}
		// The transaction must still be usable after the failed attempt
		return tx.First(&models.Group{}, "id = ?", taken.ID).Error
	})
	require.NoError(t, err)

	assert.NotEqual(t, "ABC123", colliding.InviteCode)
	assert.Len(t, colliding.InviteCode, models.InviteCodeLength)

	var count int64
	require.NoError(t, db.Model(&models.Group{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestJoinGroup(t *testing.T) {
	server := setupTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice", "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob", "bob@example.com")

	group := createGroup(t, server, aliceToken)
	aliceID := getMe(t, server, aliceToken).ID
	bobID := getMe(t, server, bobToken).ID

	// Unknown code
	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": "ZZZZZ0",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// Lookup is case-insensitive
	status, body := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": strings.ToLower(group.InviteCode),
	})
	require.Equal(t, http.StatusOK, status, "join failed: %s", body)

	var joined models.Group
	decodeJSON(t, body, &joined)
	assert.Equal(t, []string{aliceID, bobID}, []string(joined.Members), "members must preserve join order")

	me := getMe(t, server, bobToken)
	require.NotNil(t, me.Group)
	assert.Equal(t, group.ID, me.Group.ID)
}

func TestJoinGroupAlreadyInGroup(t *testing.T) {
	server := setupTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice", "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob", "bob@example.com")

	group := createGroup(t, server, aliceToken)
	createGroup(t, server, bobToken)

	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": group.InviteCode,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLeaveGroupRemainingMembers(t *testing.T) {
	server := setupTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice", "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob", "bob@example.com")

	group := createGroup(t, server, aliceToken)
	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": group.InviteCode,
	})
	require.Equal(t, http.StatusOK, status)

	createMedication(t, server, aliceToken, "Aspirin", "100mg", "Bob Sr.")

	// Bob leaves; the group and its data survive
	status, body := doJSON(t, server, http.MethodPost, "/api/groups/leave", bobToken, nil)
	require.Equal(t, http.StatusOK, status, "leave failed: %s", body)

	require.Nil(t, getMe(t, server, bobToken).Group)

	me := getMe(t, server, aliceToken)
	require.NotNil(t, me.Group)
	aliceID := me.ID
	assert.Equal(t, []string{aliceID}, []string(me.Group.Members))

	meds := listMedications(t, server, aliceToken)
	assert.Len(t, meds, 1)
}

func TestLeaveGroupLastMemberCascades(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	group := createGroup(t, server, token)
	med := createMedication(t, server, token, "Aspirin", "100mg", "Bob Sr.")
	appt := createAppointment(t, server, token, "Checkup")

	status, body := doJSON(t, server, http.MethodPost, "/api/groups/leave", token, nil)
	require.Equal(t, http.StatusOK, status, "leave failed: %s", body)

	require.Nil(t, getMe(t, server, token).Group)

	// Recreate a group so scoped lookups resolve a group for the caller;
	// the old records must be gone regardless
	createGroup(t, server, token)
	status, _ = doJSON(t, server, http.MethodPut, "/api/medications/"+med.ID, token, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, server, http.MethodDelete, "/api/appointments/"+appt.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The emptied group is gone: its code no longer joins
	other := registerAndLogin(t, server, "carol", "carol@example.com")
	status, _ = doJSON(t, server, http.MethodPost, "/api/groups/join", other, map[string]string{
		"invite_code": group.InviteCode,
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLeaveGroupNotInGroup(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/leave", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteGroupOwnerOnly(t *testing.T) {
	server := setupTestServer(t)
	aliceToken := registerAndLogin(t, server, "alice", "alice@example.com")
	bobToken := registerAndLogin(t, server, "bob", "bob@example.com")

	group := createGroup(t, server, aliceToken)
	status, _ := doJSON(t, server, http.MethodPost, "/api/groups/join", bobToken, map[string]string{
		"invite_code": group.InviteCode,
	})
	require.Equal(t, http.StatusOK, status)

	med := createMedication(t, server, aliceToken, "Aspirin", "100mg", "Bob Sr.")

	// A non-owner member may not delete the group
	status, _ = doJSON(t, server, http.MethodDelete, "/api/groups", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The owner may
	status, body := doJSON(t, server, http.MethodDelete, "/api/groups", aliceToken, nil)
	require.Equal(t, http.StatusOK, status, "delete group failed: %s", body)

	// Every member's group reference is cleared
	require.Nil(t, getMe(t, server, aliceToken).Group)
	require.Nil(t, getMe(t, server, bobToken).Group)

	// Dependent data is gone
	createGroup(t, server, aliceToken)
	status, _ = doJSON(t, server, http.MethodPut, "/api/medications/"+med.ID, aliceToken, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteGroupNotInGroup(t *testing.T) {
	server := setupTestServer(t)
	token := registerAndLogin(t, server, "alice", "alice@example.com")

	status, _ := doJSON(t, server, http.MethodDelete, "/api/groups", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
