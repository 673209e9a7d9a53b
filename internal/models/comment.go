package models

import (
	"time"
)

// Comment is a reader comment on a post. Top-level comments have a nil
// ParentID; replies point at another comment of the same post.
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"_id"`
	Desc          string    `gorm:"type:text;not null" json:"desc"`
	UserID        uint      `gorm:"not null;index" json:"userId"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PostID        uint      `gorm:"not null;index" json:"post"`
	ParentID      *uint     `gorm:"index" json:"parent"`
	ReplyOnUserID *uint     `json:"replyOnUser"`
	ReplyOnUser   *User     `gorm:"foreignKey:ReplyOnUserID" json:"-"`
	Check         bool      `gorm:"column:checked;not null;default:false" json:"check"`
	Replies       []Comment `gorm:"foreignKey:ParentID" json:"replies"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel reports whether the comment has no parent.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
