package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Username and email are unique among live
// accounts; a deleted account releases both.
type User struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Username          string         `json:"username" gorm:"uniqueIndex:idx_users_username,where:deleted_at IS NULL;type:varchar(100);not null"`
	Email             string         `json:"email" gorm:"uniqueIndex:idx_users_email,where:deleted_at IS NULL;type:varchar(255);not null"`
	FirstName         string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName          string         `json:"last_name" gorm:"type:varchar(100)"`
	DateOfBirth       *time.Time     `json:"dob,omitempty" gorm:"type:date"`
	PasswordDigest    string         `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	AvatarKey         string         `json:"-" gorm:"type:varchar(255)"`
	AvatarContentType string         `json:"-" gorm:"type:varchar(100)"`
	HasAvatar         bool           `json:"has_avatar" gorm:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// AfterFind fills the derived HasAvatar flag.
func (u *User) AfterFind(tx *gorm.DB) error {
	u.HasAvatar = u.AvatarKey != ""
	return nil
}
