package models

import "time"

// Follow is a directed edge meaning "follower receives author's posts in
// their personalized feed". The composite unique index makes duplicate edges
// impossible even under concurrent inserts; the follower != author rule is
// enforced by the follow service, not the schema.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follows_edge" json:"follower_id"`
	AuthorID   uint      `gorm:"not null;index;uniqueIndex:idx_follows_edge" json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;" json:"-"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"-"`
}
