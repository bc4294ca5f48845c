package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/services"
	"github.com/pulsefeed/pulse/utils"
)

// ProfileController serves author profiles and the follow/unfollow
// operations on them.
type ProfileController struct {
	db      *gorm.DB
	feeds   *services.FeedService
	follows *services.FollowService
}

// NewProfileController creates a ProfileController.
func NewProfileController(db *gorm.DB, feeds *services.FeedService, follows *services.FollowService) *ProfileController {
	return &ProfileController{db: db, feeds: feeds, follows: follows}
}

func (p *ProfileController) findUser(ctx *gin.Context) (*models.User, bool) {
	username := ctx.Param("username")
	var user models.User
	if err := p.db.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load user")
		return nil, false
	}
	return &user, true
}

// Profile returns a user's feed together with follower/following counts and,
// for an authenticated viewer, whether they already follow this author. The
// flag only drives the follow/unfollow affordance.
func (p *ProfileController) Profile(ctx *gin.Context) {
	profile, ok := p.findUser(ctx)
	if !ok {
		return
	}

	page, err := p.feeds.AuthorFeed(profile.ID, ctx.Query("page"))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load profile feed")
		return
	}

	followers, err := p.follows.FollowersOf(profile.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load followers")
		return
	}
	followingList, err := p.follows.FollowingOf(profile.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load followers")
		return
	}

	following := false
	if viewerID, authed := getUserID(ctx); authed {
		following, err = p.follows.IsFollowing(viewerID, profile.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load follow state")
			return
		}
	}

	utils.Success(ctx, gin.H{
		"profile":         profile,
		"feed":            page,
		"following":       following,
		"followers_count": len(followers),
		"following_count": len(followingList),
	})
}

// FollowAuthor adds a follow edge from the viewer to the profile user and
// redirects to the following feed. Following yourself or someone already
// followed is a no-op, not an error.
func (p *ProfileController) FollowAuthor(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	author, found := p.findUser(ctx)
	if !found {
		return
	}

	if _, err := p.follows.Follow(viewerID, author.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to follow")
		return
	}

	ctx.Redirect(http.StatusFound, "/follow")
}

// UnfollowAuthor removes the follow edge if present and redirects to the
// following feed.
func (p *ProfileController) UnfollowAuthor(ctx *gin.Context) {
	viewerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	author, found := p.findUser(ctx)
	if !found {
		return
	}

	if err := p.follows.Unfollow(viewerID, author.ID); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to unfollow")
		return
	}

	ctx.Redirect(http.StatusFound, "/follow")
}
