package models

import "strings"

// User is an account that can authenticate against the API
type User struct {
	Base
	Username     string  `gorm:"uniqueIndex:idx_users_username;size:50;not null" json:"username"`
	Email        string  `gorm:"index;not null" json:"email"`
	PasswordHash string  `gorm:"type:text;not null" json:"-"`
	IsActive     bool    `json:"is_active"`
	IsAdmin      bool    `json:"is_admin"`
	RoleID       *string `gorm:"index;size:36" json:"role_id,omitempty"`
}

func (u *User) Validate() error {
	if n := len(strings.TrimSpace(u.Username)); n < 3 || n > 50 {
		return invalid("username", "username must be between 3 and 50 characters")
	}
	if !strings.Contains(u.Email, "@") {
		return invalid("email", "email is not valid")
	}
	return required("password_hash", u.PasswordHash)
}
