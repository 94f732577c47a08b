package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
)

// Type names a registry event.
type Type string

const (
	TypeRegistrationCreated Type = "registration.created"
	TypeUserApproved        Type = "user.approved"
	TypeUserRejected        Type = "user.rejected"
	TypeRoleChanged         Type = "admin.role_changed"
)

// Event is published whenever the registry changes in a way the dashboard
// or downstream consumers care about.
type Event struct {
	Type       Type             `json:"type"`
	UserID     uuid.UUID        `json:"user_id"`
	Email      string           `json:"email,omitempty"`
	Name       string           `json:"name,omitempty"`
	Status     model.UserStatus `json:"status,omitempty"`
	Role       string           `json:"role,omitempty"`
	ActorID    *uuid.UUID       `json:"actor_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// ForUser builds an event describing u.
func ForUser(t Type, u *model.User, actor *uuid.UUID) Event {
	return Event{
		Type:       t,
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.FullName(),
		Status:     u.Status,
		Role:       u.AdminRole.String(),
		ActorID:    actor,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
