package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, surname, username, email, phone, tc, work_status, class_status,
	COALESCE(about, ''), consent, LOWER(status), student_doc_url, COALESCE(admin_role, ''),
	COALESCE(rejection_reason, ''), decided_by, decided_at, password_hash, staff, created_at, updated_at`

// UserRepository handles the user registry.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Name, &u.Surname, &u.Username, &u.Email, &u.Phone, &u.TC, &u.WorkStatus, &u.ClassStatus,
		&u.About, &u.Consent, &u.Status, &u.StudentDocURL, &u.AdminRole,
		&u.RejectionReason, &u.DecidedBy, &u.DecidedAt, &u.PasswordHash, &u.Staff, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Create inserts a new user. ID and timestamps are filled in.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, surname, username, email, phone, tc, work_status, class_status,
		                    about, consent, password_hash, status, student_doc_url, admin_role, staff)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13, $14, NULLIF($15, ''), $16)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Surname, u.Username, u.Email, u.Phone, u.TC, u.WorkStatus, u.ClassStatus,
		u.About, u.Consent, u.PasswordHash, string(u.Status), u.StudentDocURL, string(u.AdminRole), u.Staff,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// GetByIdentifier retrieves a user by email or username.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($1)
		 LIMIT 1`, identifier))
}

// ListByStatus returns every user in the given status, oldest registration first.
func (r *UserRepository) ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(status) = $1
		 ORDER BY created_at ASC, id ASC`, string(status))
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// List returns a window of users, optionally filtered by status.
// Approved listings are ordered for display; other listings by registration time.
func (r *UserRepository) List(ctx context.Context, status *model.UserStatus, limit, offset int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	argIdx := 1

	if status != nil {
		query += ` WHERE LOWER(status) = $1`
		args = append(args, string(*status))
		argIdx++
	}

	if status != nil && *status == model.StatusApproved {
		query += ` ORDER BY name, surname, id`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	query += ` LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// ListRoster returns a window of the public alumni roster: approved accounts
// that are not staff, ordered for display.
func (r *UserRepository) ListRoster(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(status) = 'approved' AND NOT staff
		 ORDER BY name, surname, id
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectUsers(rows)
}

// Transition applies d only if the user is still pending. When the row is no
// longer pending it is returned unchanged with changed=false.
func (r *UserRepository) Transition(ctx context.Context, d model.Decision) (*model.User, bool, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET status = $2, rejection_reason = NULLIF($3, ''), decided_by = $4,
		     decided_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND LOWER(status) = 'pending'
		 RETURNING `+userColumns,
		d.UserID, string(d.To), d.Reason, d.DecidedBy,
	))
	if err == nil {
		return u, true, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	current, err := r.GetByID(ctx, d.UserID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}
