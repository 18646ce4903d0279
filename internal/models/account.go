// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Account is an auth identity. Its ID is what ends up in the JWT `sub` claim
// and is never the same thing as the profile User.ID.
type Account struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the resolved identity for one request: the auth account id from
// the token plus the profile record it maps to. Handlers build it once and
// pass it down; services never consult any ambient current-user state.
type Session struct {
	AccountID uint
	User      *User
}
