package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *testutil.Store) {
	rdb, _ := newTestRedis(t)
	store := testutil.NewStore()
	return NewAuthService(testConfig(t), rdb, store, nopLog), store
}

func addAccount(t *testing.T, s *AuthService, store *testutil.Store, u model.User, password string) *model.User {
	hash, err := s.HashPassword(password)
	require.NoError(t, err)
	u.PasswordHash = hash
	return store.Add(u)
}

func TestLoginMemberGatesOnStatus(t *testing.T) {
	s, store := newAuthFixture(t)
	addAccount(t, s, store, model.User{Email: "ok@example.com", Username: "ok", Status: model.StatusApproved}, "password1")
	addAccount(t, s, store, model.User{Email: "wait@example.com", Username: "wait"}, "password1")
	addAccount(t, s, store, model.User{Email: "no@example.com", Username: "no", Status: model.StatusRejected}, "password1")

	resp, err := s.LoginMember(context.Background(), "OK", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Empty(t, resp.Permissions)

	_, err = s.LoginMember(context.Background(), "wait@example.com", "password1")
	assert.ErrorIs(t, err, ErrAccountPending)
	_, err = s.LoginMember(context.Background(), "no@example.com", "password1")
	assert.ErrorIs(t, err, ErrAccountRejected)
	_, err = s.LoginMember(context.Background(), "ok@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.LoginMember(context.Background(), "ghost@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAdminRequiresRole(t *testing.T) {
	s, store := newAuthFixture(t)
	addAccount(t, s, store, model.User{Email: "member@example.com", Status: model.StatusApproved}, "password1")
	addAccount(t, s, store, model.User{Email: "editor@example.com", Status: model.StatusApproved, AdminRole: model.RoleContentAdmin}, "password1")

	_, err := s.LoginAdmin(context.Background(), "member@example.com", "password1")
	assert.ErrorIs(t, err, ErrNotAdmin)

	resp, err := s.LoginAdmin(context.Background(), "editor@example.com", "password1")
	require.NoError(t, err)
	assert.Contains(t, resp.Permissions, string(model.PermissionUsersApprove))
	assert.NotContains(t, resp.Permissions, string(model.PermissionAdminsManage))

	claims, err := s.ValidateAccessToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleContentAdmin, claims.Role)
	assert.Equal(t, "editor@example.com", claims.Actor().Email)

	_, err = s.ValidateAccessToken(resp.RefreshToken)
	assert.Error(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	s, store := newAuthFixture(t)
	u := addAccount(t, s, store, model.User{Email: "a@example.com", Status: model.StatusApproved}, "password1")

	pair, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)

	next, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	_, err = s.Refresh(context.Background(), next.Token)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	s, store := newAuthFixture(t)
	u := addAccount(t, s, store, model.User{Email: "a@example.com", AdminRole: model.RoleContentAdmin}, "password1")

	pair, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)
	_, err = store.SetRole(context.Background(), u.Email, model.RoleSuperAdmin)
	require.NoError(t, err)

	next, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	claims, err := s.ValidateAccessToken(next.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperAdmin, claims.Role)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s, store := newAuthFixture(t)
	u := addAccount(t, s, store, model.User{Email: "a@example.com", Status: model.StatusApproved}, "password1")

	pair, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)
	require.NoError(t, s.Logout(context.Background(), pair.RefreshToken))
	require.NoError(t, s.Logout(context.Background(), pair.RefreshToken))

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
	assert.ErrorIs(t, s.Logout(context.Background(), "garbage"), ErrRefreshInvalid)
}

func TestRevokeAllForUser(t *testing.T) {
	rdb, mr := newTestRedis(t)
	store := testutil.NewStore()
	s := NewAuthService(testConfig(t), rdb, store, nopLog)
	u := addAccount(t, s, store, model.User{Email: "a@example.com", AdminRole: model.RoleSuperAdmin}, "password1")

	first, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)
	second, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForUser(context.Background(), u.ID))
	assert.False(t, mr.Exists(config.CacheKey.UserRefreshSetKey(u.ID.String())))

	for _, tok := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := s.Refresh(context.Background(), tok)
		assert.ErrorIs(t, err, ErrRefreshInvalid)
	}
}

func TestRefreshWarnsOnIndexDrift(t *testing.T) {
	rdb, mr := newTestRedis(t)
	store := testutil.NewStore()
	var logs bytes.Buffer
	s := NewAuthService(testConfig(t), rdb, store, zerolog.New(&logs))
	u := addAccount(t, s, store, model.User{Email: "drift@example.com", Status: model.StatusApproved}, "password1")

	pair, err := s.IssueTokens(context.Background(), u)
	require.NoError(t, err)
	mr.Del(config.CacheKey.UserRefreshSetKey(u.ID.String()))

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "Refresh token missing from user index", line["message"])
	assert.Equal(t, u.ID.String(), line["user_id"])
}
