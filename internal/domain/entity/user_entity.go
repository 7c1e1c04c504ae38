package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain.
// Password holds the bcrypt hash and is never serialized to clients.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Public returns the view with createdAt, as served by register and /me.
func (u *User) Public() PublicUser {
	created := u.CreatedAt
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: &created}
}

// Summary returns id, name and email only, as served by login and export.
func (u *User) Summary() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Updated returns the view with updatedAt, as served by profile updates.
func (u *User) Updated() PublicUser {
	updated := u.UpdatedAt
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, UpdatedAt: &updated}
}
