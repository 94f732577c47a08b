package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  nil,
		"error": map[string]string{"code": code, "message": msg},
	})
}

func TestRefreshesOnceOn401(t *testing.T) {
	var pendingCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/auth/pending-users", func(w http.ResponseWriter, r *http.Request) {
		pendingCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeErr(w, http.StatusUnauthorized, "TOKEN_INVALID", "expired")
			return
		}
		writeData(w, http.StatusOK, []model.User{{Email: "a@example.com", Status: model.StatusPending}})
	})
	mux.HandleFunc("/api/admin/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var req model.RefreshRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "old-refresh", req.RefreshToken)
		writeData(w, http.StatusOK, model.TokenPair{Token: "fresh", RefreshToken: "new-refresh"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var saved []Session
	c := New(srv.URL, &Session{AccessToken: "stale", RefreshToken: "old-refresh"},
		WithSessionSaver(func(s *Session) error {
			saved = append(saved, *s)
			return nil
		}))

	users, err := c.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int32(2), pendingCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "new-refresh", c.Session().RefreshToken)
	require.Len(t, saved, 1)
	assert.Equal(t, "fresh", saved[0].AccessToken)
}

func TestNoRetryWhenRefreshFails(t *testing.T) {
	var pendingCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/auth/pending-users", func(w http.ResponseWriter, r *http.Request) {
		pendingCalls.Add(1)
		writeErr(w, http.StatusUnauthorized, "TOKEN_INVALID", "expired")
	})
	mux.HandleFunc("/api/admin/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "revoked")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(srv.URL, &Session{AccessToken: "stale", RefreshToken: "old"})
	_, err := c.Pending(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), pendingCalls.Load())

	// Without a refresh token there is nothing to retry with.
	c = New(srv.URL, &Session{AccessToken: "stale"})
	_, err = c.Pending(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(2), pendingCalls.Load())
}

func TestPreconditionsDoNotHitTheNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeData(w, http.StatusOK, nil)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, &Session{AccessToken: "t"})
	ctx := context.Background()

	_, err := c.Reject(ctx, uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.SetRole(ctx, "", "content_admin")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.SetRole(ctx, "not-an-email", "content_admin")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.SetRole(ctx, "a@example.com", "owner")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.RemoveRole(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, calls.Load())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeErr(w, tt.status, "X", "sunucu mesajı")
			}))
			t.Cleanup(srv.Close)
			c := New(srv.URL, &Session{AccessToken: "t"})

			_, err := c.Approve(context.Background(), uuid.New())
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "sunucu mesajı", err.Error())

			_, err = c.RemoveRole(context.Background(), "a@example.com")
			assert.ErrorIs(t, err, tt.want)
			msg, ok := roleMessages[tt.status]
			require.True(t, ok, "every mapped status has an operator message")
			assert.Equal(t, msg, err.Error())
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, &Session{AccessToken: "t"})
	_, err := c.Users(context.Background(), ListOptions{})
	assert.ErrorIs(t, err, ErrServer)
}

func TestUsersDecodesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "approved", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":    []model.User{{Email: "a@example.com", Status: "Approved"}, {Email: "b@example.com", Status: "pending"}},
			"page":    2,
			"limit":   20,
			"hasMore": true,
			"status":  "approved",
		})
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, &Session{AccessToken: "t"})
	page, err := c.Users(context.Background(), ListOptions{Page: 2, Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)

	approved := FilterApproved(page.Items)
	require.Len(t, approved, 1)
	assert.Equal(t, "a@example.com", approved[0].Email)
}

func TestLoginLogoutPersistSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, model.LoginResponse{
			Token: "access", RefreshToken: "refresh",
			User:        &model.User{Email: "root@istun.edu.tr", AdminRole: model.RoleSuperAdmin},
			Permissions: model.RoleSuperAdmin.Permissions(),
		})
	})
	var revoked string
	mux.HandleFunc("/api/admin/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var req model.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		revoked = req.RefreshToken
		writeData(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.json")
	c := New(srv.URL, nil, WithSessionSaver(func(s *Session) error { return s.Save(path) }))

	_, err := c.Login(context.Background(), "root@istun.edu.tr", "secret")
	require.NoError(t, err)

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.True(t, loaded.LoggedIn())
	assert.True(t, loaded.Can(model.PermissionAdminsManage))

	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "refresh", revoked)
	loaded, err = LoadSession(path)
	require.NoError(t, err)
	assert.False(t, loaded.LoggedIn())

	require.NoError(t, ClearSession(path))
	require.NoError(t, ClearSession(path))
	loaded, err = LoadSession(path)
	require.NoError(t, err)
	assert.False(t, loaded.LoggedIn())
}
