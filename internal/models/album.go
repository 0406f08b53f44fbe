package models

import "time"

// Album groups images of a single owner.
type Album struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Description string    `json:"description" gorm:"type:varchar(2000)" validate:"omitempty,max=2000"`
	Images      []Image   `json:"images,omitempty" gorm:"foreignKey:AlbumID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
