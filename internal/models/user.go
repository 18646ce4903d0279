package models

import (
	"time"
)

// User represents a profile record in the Lumen application. AccountID links
// it to the auth identity that owns it; the two ids are distinct on purpose.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"uniqueIndex;not null" json:"account_id"`
	Name      string    `gorm:"not null" json:"name"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Bio       string    `json:"bio"`
	ImageURL  string    `json:"image_url"`
	ImageID   string    `json:"image_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Posts     []Post    `gorm:"foreignKey:CreatorID" json:"posts,omitempty"`
	Saves     []Save    `gorm:"foreignKey:UserID" json:"saves,omitempty"`
}
