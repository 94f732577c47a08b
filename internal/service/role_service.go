package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/metrics"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
	"github.com/rs/zerolog"
)

// SessionRevoker drops every refresh token of a user.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

var emailValidator = govalidator.New()

// RoleService manages admin role claims.
type RoleService struct {
	admins  AdminStore
	users   UserStore
	revoker SessionRevoker
	events  events.Publisher
	log     zerolog.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(admins AdminStore, users UserStore, revoker SessionRevoker, pub events.Publisher, log zerolog.Logger) *RoleService {
	return &RoleService{
		admins:  admins,
		users:   users,
		revoker: revoker,
		events:  pub,
		log:     log.With().Str("component", "role_service").Logger(),
	}
}

// ListAdmins returns every account holding a role claim.
func (s *RoleService) ListAdmins(ctx context.Context, actor Actor) ([]model.AdminSummary, error) {
	if err := actor.authorize(model.PermissionAdminsRead); err != nil {
		return nil, err
	}
	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// AssignRole grants role to the account with the given email, replacing any
// role it already holds.
func (s *RoleService) AssignRole(ctx context.Context, actor Actor, email, role string) (*model.User, error) {
	if err := actor.authorize(model.PermissionAdminsManage); err != nil {
		return nil, err
	}
	r, err := model.ParseAdminRole(role)
	if err != nil || !r.Assignable() {
		return nil, ErrInvalidRole
	}
	return s.setRole(ctx, actor, email, r)
}

// RemoveRole clears the role of the account with the given email. Clearing
// an account without a role succeeds without change.
func (s *RoleService) RemoveRole(ctx context.Context, actor Actor, email string) (*model.User, error) {
	if err := actor.authorize(model.PermissionAdminsManage); err != nil {
		return nil, err
	}
	return s.setRole(ctx, actor, email, model.RoleNone)
}

func (s *RoleService) setRole(ctx context.Context, actor Actor, email string, role model.AdminRole) (*model.User, error) {
	email = strings.TrimSpace(email)
	if emailValidator.Var(email, "required,email") != nil {
		return nil, ErrInvalidEmail
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}
	if target.ID == actor.ID {
		return nil, ErrSelfRoleChange
	}
	if target.AdminRole == role {
		return target, nil
	}

	updated, err := s.admins.SetRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set role for %s: %w", email, err)
	}

	metrics.RoleChanges.WithLabelValues(role.String()).Inc()
	s.log.Info().
		Str("user_id", updated.ID.String()).
		Str("from", target.AdminRole.String()).
		Str("to", role.String()).
		Str("actor_id", actor.ID.String()).
		Msg("Admin role changed")

	if err := s.revoker.RevokeAllForUser(ctx, updated.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", updated.ID.String()).Msg("Revoke sessions after role change failed")
	}
	actorID := actor.ID
	if err := s.events.Publish(ctx, events.ForUser(events.TypeRoleChanged, updated, &actorID)); err != nil {
		s.log.Warn().Err(err).Msg("Publish role event failed")
	}
	return updated, nil
}
