package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStatus is the approval state of a registrant.
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

// ParseUserStatus normalizes a status string. Comparison is case-insensitive.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown user status %q", s)
	}
}

// IsDecided reports whether the status is terminal.
func (s UserStatus) IsDecided() bool {
	return s == StatusApproved || s == StatusRejected
}

// User represents a registered alumni network member.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Surname         string     `json:"surname"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	TC              string     `json:"tc"`
	WorkStatus      string     `json:"workStatus"`
	ClassStatus     string     `json:"classStatus"`
	About           string     `json:"about,omitempty"`
	Consent         bool       `json:"consent"`
	Status          UserStatus `json:"status"`
	StudentDocURL   string     `json:"student_doc_url"`
	AdminRole       AdminRole  `json:"adminRole,omitempty"`
	Staff           bool       `json:"staff,omitempty"` // bootstrap account, hidden from the roster
	RejectionReason string     `json:"rejectionReason,omitempty"`
	DecidedBy       *uuid.UUID `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	PasswordHash    string     `json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// FullName joins name and surname.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// PublicProfile is the subset of a user shown on the public alumni roster.
type PublicProfile struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Username    string    `json:"username"`
	WorkStatus  string    `json:"workStatus"`
	ClassStatus string    `json:"classStatus"`
	About       string    `json:"about,omitempty"`
}

// Public strips contact and identity fields.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Name:        u.Name,
		Surname:     u.Surname,
		Username:    u.Username,
		WorkStatus:  u.WorkStatus,
		ClassStatus: u.ClassStatus,
		About:       u.About,
	}
}

// AdminSummary is an entry of the admin management list.
type AdminSummary struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Role    AdminRole `json:"role"`
}

// Decision is a status transition requested by an admin.
type Decision struct {
	UserID    uuid.UUID
	To        UserStatus
	Reason    string
	DecidedBy uuid.UUID
}

// RegisterRequest is the multipart payload for self-service registration.
type RegisterRequest struct {
	Name        string `form:"name" json:"name" binding:"required,min=2,max=100"`
	Surname     string `form:"surname" json:"surname" binding:"required,min=2,max=100"`
	Username    string `form:"username" json:"username" binding:"required,min=3,max=50,alphanum"`
	Email       string `form:"email" json:"email" binding:"required,email,max=255"`
	Phone       string `form:"phone" json:"phone" binding:"required,e164|numeric,min=10,max=20"`
	TC          string `form:"tc" json:"tc" binding:"required,tckn"`
	WorkStatus  string `form:"workStatus" json:"workStatus" binding:"required,max=50"`
	ClassStatus string `form:"classStatus" json:"classStatus" binding:"required,max=50"`
	About       string `form:"about" json:"about" binding:"omitempty,max=2000"`
	Consent     bool   `form:"consent" json:"consent"`
	Password    string `form:"password" json:"password" binding:"required,min=8,max=128"`
}

// UserListQuery holds the /api/users query string.
type UserListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected all Pending Approved Rejected"`
}
