package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/metrics"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
	"github.com/rs/zerolog"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ApprovalService moves registrants from pending to approved or rejected
// and serves the listings that depend on status.
type ApprovalService struct {
	cfg      *config.Config
	users    UserStore
	notifier Notifier
	events   events.Publisher
	log      zerolog.Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(cfg *config.Config, users UserStore, notifier Notifier, pub events.Publisher, log zerolog.Logger) *ApprovalService {
	return &ApprovalService{
		cfg:      cfg,
		users:    users,
		notifier: notifier,
		events:   pub,
		log:      log.With().Str("component", "approval_service").Logger(),
	}
}

// ListPending returns pending registrants, oldest first, with absolute document links.
func (s *ApprovalService) ListPending(ctx context.Context, actor Actor) ([]model.User, error) {
	if err := actor.authorize(model.PermissionUsersApprove); err != nil {
		return nil, err
	}

	users, err := s.users.ListByStatus(ctx, model.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	for i := range users {
		users[i].StudentDocURL = s.documentURL(users[i].StudentDocURL)
	}
	return users, nil
}

// Approve marks a pending user approved. Approving an approved user is a
// no-op; approving a rejected user fails with ErrAlreadyDecided.
// changed reports whether this call performed the transition.
func (s *ApprovalService) Approve(ctx context.Context, actor Actor, userID uuid.UUID) (u *model.User, changed bool, err error) {
	if err := actor.authorize(model.PermissionUsersApprove); err != nil {
		return nil, false, err
	}
	return s.decide(ctx, actor, model.Decision{UserID: userID, To: model.StatusApproved, DecidedBy: actor.ID})
}

// Reject marks a pending user rejected and records the reason. Rejecting a
// rejected user is a no-op and keeps the original reason.
func (s *ApprovalService) Reject(ctx context.Context, actor Actor, userID uuid.UUID, reason string) (u *model.User, changed bool, err error) {
	if err := actor.authorize(model.PermissionUsersApprove); err != nil {
		return nil, false, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, false, ErrReasonRequired
	}
	return s.decide(ctx, actor, model.Decision{UserID: userID, To: model.StatusRejected, Reason: reason, DecidedBy: actor.ID})
}

func (s *ApprovalService) decide(ctx context.Context, actor Actor, d model.Decision) (*model.User, bool, error) {
	u, changed, err := s.users.Transition(ctx, d)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("transition user %s: %w", d.UserID, err)
	}

	if !changed {
		if u.Status == d.To {
			metrics.Decisions.WithLabelValues(string(d.To), "noop").Inc()
			return u, false, nil
		}
		metrics.Decisions.WithLabelValues(string(d.To), "conflict").Inc()
		return nil, false, ErrAlreadyDecided
	}

	metrics.Decisions.WithLabelValues(string(d.To), "changed").Inc()
	s.log.Info().
		Str("user_id", u.ID.String()).
		Str("status", string(u.Status)).
		Str("actor_id", actor.ID.String()).
		Msg("Registration decided")

	// Side effects must not undo a committed decision.
	if err := s.notifier.UserDecided(ctx, u); err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("Enqueue decision mail failed")
	}
	evtType := events.TypeUserApproved
	if u.Status == model.StatusRejected {
		evtType = events.TypeUserRejected
	}
	actorID := actor.ID
	if err := s.events.Publish(ctx, events.ForUser(evtType, u, &actorID)); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Publish decision event failed")
	}

	u.StudentDocURL = s.documentURL(u.StudentDocURL)
	return u, true, nil
}

// ListApproved returns one page of the public alumni roster.
func (s *ApprovalService) ListApproved(ctx context.Context, page, limit int) ([]model.PublicProfile, bool, error) {
	page, limit = NormalizePage(page, limit)

	users, err := s.users.ListRoster(ctx, limit+1, (page-1)*limit)
	if err != nil {
		return nil, false, fmt.Errorf("list approved: %w", err)
	}
	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}

	profiles := make([]model.PublicProfile, 0, len(users))
	for i := range users {
		if users[i].Staff || !strings.EqualFold(string(users[i].Status), string(model.StatusApproved)) {
			continue
		}
		profiles = append(profiles, users[i].Public())
	}
	return profiles, hasMore, nil
}

// ListUsers returns one page of users for the dashboard, optionally filtered
// by status. A nil status means all users.
func (s *ApprovalService) ListUsers(ctx context.Context, actor Actor, status *model.UserStatus, page, limit int) ([]model.User, bool, error) {
	if err := actor.authorize(model.PermissionUsersRead); err != nil {
		return nil, false, err
	}
	page, limit = NormalizePage(page, limit)

	users, err := s.users.List(ctx, status, limit+1, (page-1)*limit)
	if err != nil {
		return nil, false, fmt.Errorf("list users: %w", err)
	}
	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}
	for i := range users {
		users[i].StudentDocURL = s.documentURL(users[i].StudentDocURL)
	}
	return users, hasMore, nil
}

// NormalizePage applies the default and maximum page window.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func (s *ApprovalService) documentURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.cfg.PublicBaseURL + path
}
