package models

import (
	"time"
)

// Post is a blog article addressed externally by its slug.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"_id"`
	Title      string    `gorm:"not null" json:"title"`
	Caption    string    `gorm:"not null" json:"caption"`
	Slug       string    `gorm:"uniqueIndex;not null" json:"slug"`
	Body       Document  `gorm:"serializer:json;type:text" json:"body"`
	Photo      string    `gorm:"default:''" json:"photo"`
	Tags       []string  `gorm:"serializer:json;type:text" json:"tags"`
	Categories []string  `gorm:"serializer:json;type:text" json:"categories"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Comments   []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// PostDocument is the JSON metadata submitted alongside a post update.
// Zero values mean "keep the stored value".
type PostDocument struct {
	Title      string    `json:"title"`
	Caption    string    `json:"caption"`
	Slug       string    `json:"slug"`
	Body       *Document `json:"body"`
	Tags       []string  `json:"tags"`
	Categories []string  `json:"categories"`
}
