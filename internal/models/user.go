package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an account that may contribute audio to the shared library.
//
// LibraryPath, when set, replaces the global music directory for this user;
// directory resolution rules live in internal/library.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	LibraryPath  *string   `json:"library_path,omitempty"`
	Created      time.Time `json:"created_at"`
	Updated      time.Time `json:"updated_at"`
}

var _ Model = (*User)(nil)

func (u *User) Key() string          { return u.ID }
func (u *User) CreatedAt() time.Time { return u.Created }

// Validate checks username and credential invariants before persistence.
func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Username)) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if u.LibraryPath != nil && strings.Contains(*u.LibraryPath, "..") {
		return fmt.Errorf("library path contains invalid characters (..)")
	}
	return nil
}
