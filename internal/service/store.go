package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
)

// UserStore is the user registry as seen by the services.
// Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	ListByStatus(ctx context.Context, status model.UserStatus) ([]model.User, error)
	List(ctx context.Context, status *model.UserStatus, limit, offset int) ([]model.User, error)
	ListRoster(ctx context.Context, limit, offset int) ([]model.User, error)
	Transition(ctx context.Context, d model.Decision) (*model.User, bool, error)
}

// AdminStore holds role claims. Implemented by repository.AdminRepository.
type AdminStore interface {
	SetRole(ctx context.Context, email string, role model.AdminRole) (*model.User, error)
	ListAdmins(ctx context.Context) ([]model.AdminSummary, error)
}

// Notifier queues applicant mails. Implemented by notify.Queue.
type Notifier interface {
	RegistrationReceived(ctx context.Context, u *model.User) error
	UserDecided(ctx context.Context, u *model.User) error
}

// Actor is the authenticated caller of a privileged operation.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  model.AdminRole
}

func (a Actor) authorize(p model.Permission) error {
	if !a.Role.Can(p) {
		return ErrForbidden
	}
	return nil
}
