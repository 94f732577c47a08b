package repository

import (
	"context"

	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository handles admin role claims on user accounts.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// SetRole upserts the role claim of the account with the given email.
// RoleNone clears it. Returns the updated user.
func (r *AdminRepository) SetRole(ctx context.Context, email string, role model.AdminRole) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users SET admin_role = NULLIF($2, ''), updated_at = NOW()
		 WHERE LOWER(email) = LOWER($1)
		 RETURNING `+userColumns,
		email, string(role),
	))
}

// ListAdmins returns every account holding a role claim, ordered by email.
func (r *AdminRepository) ListAdmins(ctx context.Context) ([]model.AdminSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, surname, admin_role
		 FROM users
		 WHERE admin_role IS NOT NULL
		 ORDER BY LOWER(email)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []model.AdminSummary{}
	for rows.Next() {
		var a model.AdminSummary
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.Surname, &a.Role); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
