package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/istun/mezunlar-backend/internal/events"
	"github.com/istun/mezunlar-backend/internal/metrics"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
	"github.com/rs/zerolog"
)

// RegistrationService handles self-service sign-up.
type RegistrationService struct {
	users    UserStore
	auth     *AuthService
	media    *MediaService
	notifier Notifier
	events   events.Publisher
	log      zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	users UserStore,
	auth *AuthService,
	media *MediaService,
	notifier Notifier,
	pub events.Publisher,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:    users,
		auth:     auth,
		media:    media,
		notifier: notifier,
		events:   pub,
		log:      log.With().Str("component", "registration_service").Logger(),
	}
}

// Register stores a new registrant in the pending state together with the
// uploaded student document.
func (s *RegistrationService) Register(ctx context.Context, req model.RegisterRequest, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	if !req.Consent {
		return nil, ErrConsentRequired
	}
	if file == nil || header == nil {
		return nil, ErrDocumentRequired
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	docURL, err := s.media.SaveUpload(file, header)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:          strings.TrimSpace(req.Name),
		Surname:       strings.TrimSpace(req.Surname),
		Username:      strings.TrimSpace(req.Username),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		TC:            req.TC,
		WorkStatus:    strings.TrimSpace(req.WorkStatus),
		ClassStatus:   strings.TrimSpace(req.ClassStatus),
		About:         strings.TrimSpace(req.About),
		Consent:       true,
		PasswordHash:  hash,
		Status:        model.StatusPending,
		StudentDocURL: docURL,
		AdminRole:     model.RoleNone,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if rmErr := s.media.Remove(docURL); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", docURL).Msg("Remove orphaned document failed")
		}
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.Registrations.Inc()
	s.log.Info().Str("user_id", u.ID.String()).Msg("Registration received")

	if err := s.notifier.RegistrationReceived(ctx, u); err != nil {
		s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("Enqueue registration mail failed")
	}
	if err := s.events.Publish(ctx, events.ForUser(events.TypeRegistrationCreated, u, nil)); err != nil {
		s.log.Warn().Err(err).Msg("Publish registration event failed")
	}
	return u, nil
}
