package service

import "errors"

// Authentication errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account is awaiting approval")
	ErrAccountRejected    = errors.New("account registration was rejected")
	ErrNotAdmin           = errors.New("account holds no admin role")
	ErrRefreshInvalid     = errors.New("refresh token is invalid or revoked")
)

// Authorization and state errors.
var (
	ErrForbidden        = errors.New("actor lacks the required permission")
	ErrNotFound         = errors.New("user not found")
	ErrAlreadyDecided   = errors.New("user has already been decided the other way")
	ErrReasonRequired   = errors.New("rejection reason is required")
	ErrInvalidRole      = errors.New("role must be content_admin or super_admin")
	ErrInvalidEmail     = errors.New("a valid email is required")
	ErrSelfRoleChange   = errors.New("admins cannot change their own role")
	ErrConsentRequired  = errors.New("consent is required to register")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrDocumentRequired = errors.New("student document is required")
)
