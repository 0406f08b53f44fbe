package models

import "time"

// Relationship is a directed follow edge: FollowerID follows FollowedID.
// At most one edge exists per ordered pair.
type Relationship struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_relationships_pair"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:idx_relationships_pair"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
