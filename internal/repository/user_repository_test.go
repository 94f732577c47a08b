//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/istun/mezunlar-backend/internal/database"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mezunlar_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp("../../migrations", connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newUser(n int, status model.UserStatus) *model.User {
	return &model.User{
		Name:          fmt.Sprintf("Ad%d", n),
		Surname:       "Soyad",
		Username:      fmt.Sprintf("mezun%d", n),
		Email:         fmt.Sprintf("mezun%d@example.com", n),
		Phone:         "05551234567",
		TC:            "10000000146",
		WorkStatus:    "Çalışıyor",
		ClassStatus:   "Mezun",
		Consent:       true,
		PasswordHash:  "hash",
		Status:        status,
		StudentDocURL: "/uploads/doc.pdf",
	}
}

func TestUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	pool := setupPostgres(t)
	users := NewUserRepository(pool)
	admins := NewAdminRepository(pool)
	ctx := context.Background()

	admin := newUser(0, model.StatusApproved)
	admin.AdminRole = model.RoleSuperAdmin
	require.NoError(t, users.Create(ctx, admin))

	t.Run("create and duplicates", func(t *testing.T) {
		u := newUser(1, model.StatusPending)
		require.NoError(t, users.Create(ctx, u))
		assert.NotZero(t, u.CreatedAt)

		dupEmail := newUser(2, model.StatusPending)
		dupEmail.Email = "MEZUN1@example.com"
		assert.ErrorIs(t, users.Create(ctx, dupEmail), ErrDuplicateEmail)

		dupUsername := newUser(3, model.StatusPending)
		dupUsername.Username = "Mezun1"
		assert.ErrorIs(t, users.Create(ctx, dupUsername), ErrDuplicateUsername)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		byEmail, err := users.GetByIdentifier(ctx, "MEZUN1@EXAMPLE.COM")
		require.NoError(t, err)
		byUsername, err := users.GetByIdentifier(ctx, "MEZUN1")
		require.NoError(t, err)
		assert.Equal(t, byEmail.ID, byUsername.ID)

		_, err = users.GetByIdentifier(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transition from pending only", func(t *testing.T) {
		u := newUser(4, model.StatusPending)
		require.NoError(t, users.Create(ctx, u))

		got, changed, err := users.Transition(ctx, model.Decision{UserID: u.ID, To: model.StatusApproved, DecidedBy: admin.ID})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, model.StatusApproved, got.Status)
		require.NotNil(t, got.DecidedBy)
		assert.Equal(t, admin.ID, *got.DecidedBy)

		got, changed, err = users.Transition(ctx, model.Decision{UserID: u.ID, To: model.StatusApproved, DecidedBy: admin.ID})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, model.StatusApproved, got.Status)

		got, changed, err = users.Transition(ctx, model.Decision{UserID: u.ID, To: model.StatusRejected, Reason: "belge", DecidedBy: admin.ID})
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, model.StatusApproved, got.Status)
		assert.Empty(t, got.RejectionReason)

		_, _, err = users.Transition(ctx, model.Decision{UserID: newUser(99, "").ID, To: model.StatusApproved, DecidedBy: admin.ID})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("status is read case-insensitively", func(t *testing.T) {
		u := newUser(5, "Pending")
		require.NoError(t, users.Create(ctx, u))

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, got.Status)

		pending, err := users.ListByStatus(ctx, model.StatusPending)
		require.NoError(t, err)
		ids := make([]string, 0, len(pending))
		for _, p := range pending {
			ids = append(ids, p.ID.String())
		}
		assert.Contains(t, ids, u.ID.String())
	})

	t.Run("list window", func(t *testing.T) {
		all, err := users.List(ctx, nil, 100, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(all), 3)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt))
		}

		window, err := users.List(ctx, nil, 2, 1)
		require.NoError(t, err)
		require.Len(t, window, 2)
		assert.Equal(t, all[1].ID, window[0].ID)

		approved := model.StatusApproved
		onlyApproved, err := users.List(ctx, &approved, 100, 0)
		require.NoError(t, err)
		for _, u := range onlyApproved {
			assert.Equal(t, model.StatusApproved, u.Status)
		}
	})

	t.Run("roles", func(t *testing.T) {
		u, err := admins.SetRole(ctx, "MEZUN4@example.com", model.RoleContentAdmin)
		require.NoError(t, err)
		assert.Equal(t, model.RoleContentAdmin, u.AdminRole)

		list, err := admins.ListAdmins(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "mezun0@example.com", list[0].Email)
		assert.Equal(t, model.RoleContentAdmin, list[1].Role)

		u, err = admins.SetRole(ctx, "mezun4@example.com", model.RoleNone)
		require.NoError(t, err)
		assert.Equal(t, model.RoleNone, u.AdminRole)

		_, err = admins.SetRole(ctx, "missing@example.com", model.RoleSuperAdmin)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("roster hides staff", func(t *testing.T) {
		staff := newUser(6, model.StatusApproved)
		staff.AdminRole = model.RoleSuperAdmin
		staff.Staff = true
		require.NoError(t, users.Create(ctx, staff))

		got, err := users.GetByID(ctx, staff.ID)
		require.NoError(t, err)
		assert.True(t, got.Staff)

		roster, err := users.ListRoster(ctx, 100, 0)
		require.NoError(t, err)
		ids := make([]string, 0, len(roster))
		for _, u := range roster {
			assert.Equal(t, model.StatusApproved, u.Status)
			assert.False(t, u.Staff)
			ids = append(ids, u.ID.String())
		}
		assert.Contains(t, ids, admin.ID.String())
		assert.NotContains(t, ids, staff.ID.String())
	})
}
