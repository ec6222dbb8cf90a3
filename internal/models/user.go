package models

import (
	"time"
)

// TemporaryPassword is accepted for legacy accounts that were provisioned
// without a password. Those accounts must change it on first login.
const TemporaryPassword = "1234"

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Username           string  `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordHash       *string `gorm:"column:password;size:255" json:"-"`
	MustChangePassword bool    `gorm:"not null" json:"must_change_password"`
	CompletedCount     int     `gorm:"not null;default:0" json:"completed_count"`
}

func (User) TableName() string { return "users" }

// HasPassword reports whether the account has a bcrypt hash set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type UserResponse struct {
	ID                 uint   `json:"id"`
	Username           string `json:"username"`
	MustChangePassword bool   `json:"must_change_password"`
	CompletedCount     int    `json:"completed_count"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		MustChangePassword: u.MustChangePassword,
		CompletedCount:     u.CompletedCount,
	}
}
