package model

// LoginRequest is the payload for member and admin authentication.
// Identifier accepts an email address or a username; Email is kept for
// dashboards that still post {email, password}.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required_without=Email,max=255"`
	Email      string `json:"email" binding:"required_without=Identifier,max=255"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
}

// Login returns whichever identifier was supplied.
func (r *LoginRequest) Login() string {
	if r.Identifier != "" {
		return r.Identifier
	}
	return r.Email
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         *User    `json:"user"`
	Permissions  []string `json:"permissions"`
	Message      string   `json:"message"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenPair is an access token and the refresh token minted with it.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RejectRequest carries the mandatory rejection justification.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=1000"`
}

// SetRoleRequest assigns an admin role to the account with the given email.
type SetRoleRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role" binding:"required,oneof=content_admin super_admin"`
}

// RemoveRoleRequest clears the admin role of the account with the given email.
type RemoveRoleRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}
