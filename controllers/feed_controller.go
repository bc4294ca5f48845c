package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/cache"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/services"
	"github.com/pulsefeed/pulse/utils"
)

// FeedController serves the feed listings: global (cached), group, and the
// viewer's personalized following feed.
type FeedController struct {
	db        *gorm.DB
	feeds     *services.FeedService
	follows   *services.FollowService
	pageCache cache.PageCache
}

// NewFeedController creates a FeedController.
func NewFeedController(db *gorm.DB, feeds *services.FeedService, follows *services.FollowService, pageCache cache.PageCache) *FeedController {
	return &FeedController{db: db, feeds: feeds, follows: follows, pageCache: pageCache}
}

// Index returns the global feed. The rendered body is served from the page
// cache within the TTL window; writes do not invalidate it, so a new post
// shows up here only after expiry or an explicit clear.
func (f *FeedController) Index(ctx *gin.Context) {
	key := cache.PageKey(ctx.Request.URL.Path, ctx.Query("page"))
	if body, ok := f.pageCache.Get(key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	page, err := f.feeds.GlobalFeed(ctx.Query("page"))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load feed")
		return
	}

	body, err := json.Marshal(utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data:    gin.H{"feed": page},
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to render feed")
		return
	}

	f.pageCache.Set(key, body)
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GroupFeed returns the posts of one group, always computed fresh.
func (f *FeedController) GroupFeed(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var group models.Group
	if err := f.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "group not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load group")
		return
	}

	page, err := f.feeds.GroupFeed(group.ID, ctx.Query("page"))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load group feed")
		return
	}

	utils.Success(ctx, gin.H{"group": group, "feed": page})
}

// FollowingFeed returns posts authored by the users the viewer follows.
// Following nobody is a valid empty state, flagged so clients can show the
// "not following anyone yet" presentation.
func (f *FeedController) FollowingFeed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	authorIDs, err := f.follows.FollowedAuthorIDs(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to load follows")
		return
	}

	page, err := f.feeds.FeedForAuthors(authorIDs, ctx.Query("page"))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to load following feed")
		return
	}

	utils.Success(ctx, gin.H{
		"feed":             page,
		"following_anyone": len(authorIDs) > 0,
	})
}
