package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TagList stores a post's tags as a JSON array in a single text column.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		t = TagList{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = TagList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tag list type %T", value)
	}
}

// Post represents a post in the Lumen application.
//
// CreatorName and CreatorImageURL are denormalized copies taken at creation
// time. They are not refreshed when the profile changes; readers see the
// values as of the post's creation.
type Post struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	Caption         string  `gorm:"type:text;not null" json:"caption"`
	ImageURL        string  `gorm:"not null" json:"image_url"`
	ImageID         string  `gorm:"not null" json:"image_id"`
	Location        string  `json:"location"`
	Tags            TagList `gorm:"type:text" json:"tags"`
	CreatorID       uint    `gorm:"not null;index" json:"creator_id"`
	Creator         *User   `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	CreatorName     string  `gorm:"not null" json:"creator_name"`
	CreatorImageURL string  `json:"creator_image_url"`
	// Likes is not persisted; populated at query time with liker user ids
	Likes []uint `gorm:"-" json:"likes"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
