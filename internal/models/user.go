// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered author or reader.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `gorm:"default:''" json:"avatar"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	Admin     bool      `gorm:"default:false" json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// Profile is the public view of a user returned by the account endpoints.
type Profile struct {
	ID       uint   `json:"_id"`
	Avatar   string `json:"avatar"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Admin    bool   `json:"admin"`
	Token    string `json:"token,omitempty"`
}

// ProfileOf builds the public view of u with an optional token.
func ProfileOf(u *User, token string) Profile {
	return Profile{
		ID:       u.ID,
		Avatar:   u.Avatar,
		Name:     u.Name,
		Email:    u.Email,
		Verified: u.Verified,
		Admin:    u.Admin,
		Token:    token,
	}
}
