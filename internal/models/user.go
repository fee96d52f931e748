package models

import (
	"time"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
	RoleAnalyst    UserRole = "analyst"
)

// AdminLevel is the privilege tier of an administrator
type AdminLevel string

const (
	AdminJunior AdminLevel = "junior"
	AdminSenior AdminLevel = "senior"
)

// User is read from Casdoor and never persisted by this service
type User struct {
	ID         string     `json:"id"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Role       UserRole   `json:"role"`
	AdminLevel AdminLevel `json:"admin_level,omitempty"`

	// Profile info
	AvatarURL *string `json:"avatar_url"`

	EmailVerified bool `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsSeniorAdmin() bool {
	return u.IsAdmin() && u.AdminLevel == AdminSenior
}
