package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes access vs refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType       `json:"token_type"`
	UserID    uuid.UUID       `json:"user_id"`
	Email     string          `json:"email,omitempty"`
	Role      model.AdminRole `json:"role,omitempty"` // Access only
}

// Actor returns the caller described by an access token.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Email: c.Email, Role: c.Role}
}

// AuthService handles credentials, JWT issuance and refresh-token sessions.
type AuthService struct {
	cfg   *config.Config
	rdb   *redis.Client
	users UserStore
	log   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, users UserStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:   cfg,
		rdb:   rdb,
		users: users,
		log:   log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// LoginAdmin authenticates a dashboard operator. Only accounts holding an
// admin role may log in here.
func (s *AuthService) LoginAdmin(ctx context.Context, identifier, password string) (*model.LoginResponse, error) {
	u, err := s.authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if !u.AdminRole.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return s.loginResponse(ctx, u, "Yönetici girişi başarılı.")
}

// LoginMember authenticates an alumni member. Only approved accounts may log in.
func (s *AuthService) LoginMember(ctx context.Context, identifier, password string) (*model.LoginResponse, error) {
	u, err := s.authenticate(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if err := memberGate(u); err != nil {
		return nil, err
	}
	return s.loginResponse(ctx, u, "Giriş başarılı.")
}

func memberGate(u *model.User) error {
	switch u.Status {
	case model.StatusApproved:
		return nil
	case model.StatusRejected:
		return ErrAccountRejected
	default:
		return ErrAccountPending
	}
}

func (s *AuthService) authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	u, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) loginResponse(ctx context.Context, u *model.User, msg string) (*model.LoginResponse, error) {
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
		User:         u,
		Permissions:  u.AdminRole.Permissions(),
		Message:      msg,
	}, nil
}

// IssueTokens mints an access token and a refresh token for u and registers
// the refresh token in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *model.User) (*model.TokenPair, error) {
	now := time.Now()

	access, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
		TokenType: TokenTypeAccess,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.AdminRole,
	})
	if err != nil {
		return nil, err
	}

	jti := uuid.New().String()
	refresh, err := s.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTokenTTL)),
		},
		TokenType: TokenTypeRefresh,
		UserID:    u.ID,
	})
	if err != nil {
		return nil, err
	}

	setKey := config.CacheKey.UserRefreshSetKey(u.ID.String())
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.RefreshTokenKey(jti), u.ID.String(), s.cfg.RefreshTokenTTL)
	pipe.SAdd(ctx, setKey, jti)
	pipe.Expire(ctx, setKey, s.cfg.RefreshTokenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{Token: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateAccessToken is ValidateToken restricted to access tokens.
func (s *AuthService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

func (s *AuthService) parseRefresh(tokenStr string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil || claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return nil, ErrRefreshInvalid
	}
	return claims, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued with the account's current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	owner, err := s.rdb.GetDel(ctx, config.CacheKey.RefreshTokenKey(claims.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	removed, err := s.rdb.SRem(ctx, config.CacheKey.UserRefreshSetKey(owner), claims.ID).Result()
	if err != nil || removed == 0 {
		s.log.Warn().Err(err).Str("jti", claims.ID).Str("user_id", owner).
			Msg("Refresh token missing from user index")
	}

	if owner != claims.UserID.String() {
		s.log.Warn().Str("jti", claims.ID).Msg("Refresh token owner mismatch")
		return nil, ErrRefreshInvalid
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if !u.AdminRole.IsAdmin() && memberGate(u) != nil {
		return nil, ErrRefreshInvalid
	}

	return s.IssueTokens(ctx, u)
}

// Logout revokes the presented refresh token. Revoking an already revoked
// token succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.RefreshTokenKey(claims.ID))
	pipe.SRem(ctx, config.CacheKey.UserRefreshSetKey(claims.UserID.String()), claims.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser removes every refresh token of the given user.
func (s *AuthService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	setKey := config.CacheKey.UserRefreshSetKey(userID.String())
	jtis, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list refresh tokens: %w", err)
	}

	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, config.CacheKey.RefreshTokenKey(jti))
	}
	keys = append(keys, setKey)

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// Me returns the account behind an access token.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
