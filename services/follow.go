package services

import (
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
)

// FollowService maintains the directed follow graph between users. The
// operation boundary guarantees no self-loops and no duplicate edges; the
// composite unique index on follows backstops concurrent inserts.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService creates a FollowService on the given store.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Follow idempotently ensures the (follower, author) edge exists and returns
// it. Following yourself is a no-op and returns nil; following someone
// already followed returns the existing edge.
func (s *FollowService) Follow(followerID, authorID uint) (*models.Follow, error) {
	if followerID == authorID {
		return nil, nil
	}

	var edge models.Follow
	err := s.db.
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		FirstOrCreate(&edge, models.Follow{FollowerID: followerID, AuthorID: authorID}).Error
	if err != nil {
		// A concurrent request may have tripped the unique index; the edge
		// exists now, so fetch it.
		var existing models.Follow
		if ferr := s.db.Where("follower_id = ? AND author_id = ?", followerID, authorID).
			First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &edge, nil
}

// Unfollow removes the edge if present. A missing edge is not an error.
func (s *FollowService) Unfollow(followerID, authorID uint) error {
	return s.db.
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{}).Error
}

// FollowedAuthorIDs returns the ids of every author the user follows, the
// author-set for their personalized feed. Order is irrelevant.
func (s *FollowService) FollowedAuthorIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("author_id", &ids).Error
	return ids, err
}

// IsFollowing reports whether viewer already follows the author. Used for
// the follow/unfollow affordance on profile pages.
func (s *FollowService) IsFollowing(viewerID, authorID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", viewerID, authorID).
		Count(&count).Error
	return count > 0, err
}

// FollowersOf returns the users following the given author.
func (s *FollowService) FollowersOf(authorID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.author_id = ?", authorID).
		Find(&users).Error
	return users, err
}

// FollowingOf returns the users the given user follows.
func (s *FollowService) FollowingOf(userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", userID).
		Find(&users).Error
	return users, err
}
