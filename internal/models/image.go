package models

import "time"

// Image is an uploaded picture owned by exactly one user.
type Image struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	AlbumID     *uint     `json:"album_id,omitempty" gorm:"index"`
	Title       string    `json:"title" gorm:"type:varchar(255)"`
	Caption     string    `json:"caption" gorm:"type:varchar(1000)"`
	FileKey     string    `json:"-" gorm:"type:varchar(255);not null"`
	FileName    string    `json:"file_name" gorm:"type:varchar(255)"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100)"`
	FileSize    int64     `json:"file_size"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}
