package models

import (
	"time"
)

// Save is a user's bookmark of a post. One row per (user, post); the unique
// index backs the conflict-free upsert so concurrent saves cannot duplicate.
// Hard-deleted on unsave.
type Save struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User  `gorm:"foreignKey:UserID" json:"-"`
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
