package services

import (
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
)

// FeedService assembles the feed variants. Every variant is the same shape:
// filter posts by an author-set (or group), order newest first, paginate.
type FeedService struct {
	db *gorm.DB
}

// NewFeedService creates a FeedService on the given store.
func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

func (s *FeedService) base() *gorm.DB {
	return s.db.Model(&models.Post{}).Preload("Author").Preload("Group")
}

// GlobalFeed returns all posts, newest first.
func (s *FeedService) GlobalFeed(rawPage string) (*PostPage, error) {
	return PaginatePosts(s.base(), rawPage)
}

// GroupFeed returns the posts published under one group.
func (s *FeedService) GroupFeed(groupID uint, rawPage string) (*PostPage, error) {
	return PaginatePosts(s.base().Where("group_id = ?", groupID), rawPage)
}

// AuthorFeed returns the posts of a single author, for profile pages.
func (s *FeedService) AuthorFeed(authorID uint, rawPage string) (*PostPage, error) {
	return PaginatePosts(s.base().Where("author_id = ?", authorID), rawPage)
}

// FeedForAuthors returns posts whose author is in the given set. An empty
// set short-circuits to an empty page.
func (s *FeedService) FeedForAuthors(authorIDs []uint, rawPage string) (*PostPage, error) {
	if len(authorIDs) == 0 {
		return EmptyPage(), nil
	}
	return PaginatePosts(s.base().Where("author_id IN ?", authorIDs), rawPage)
}
