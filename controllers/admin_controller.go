package controllers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/cache"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// AdminController covers the administrator-only surface: group management
// and the explicit page cache clear.
type AdminController struct {
	db        *gorm.DB
	pageCache cache.PageCache
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB, pageCache cache.PageCache) *AdminController {
	return &AdminController{db: db, pageCache: pageCache}
}

// ListGroups returns every group; public, used to populate post forms.
func (a *AdminController) ListGroups(ctx *gin.Context) {
	var groups []models.Group
	if err := a.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"groups": groups})
}

// CreateGroup creates a topic. Administrators only; the title and slug are
// unique, the slug is the immutable URL identity.
func (a *AdminController) CreateGroup(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "administrator access required")
		return
	}

	type request struct {
		Title       string `json:"title" binding:"required"`
		Slug        string `json:"slug" binding:"required"`
		Description string `json:"description"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title cannot be empty")
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "slug must be lowercase letters, digits, and '-'")
		return
	}

	var existing models.Group
	if err := a.db.Where("title = ? OR slug = ?", title, slug).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "group title or slug already exists")
		return
	}

	group := models.Group{
		Title:       title,
		Slug:        slug,
		Description: utils.Sanitize(req.Description),
	}
	if err := a.db.Create(&group).Error; err != nil {
		// Unique indexes on title and slug win races with the check above.
		utils.Error(ctx, http.StatusConflict, 40910, "group title or slug already exists")
		return
	}

	utils.Success(ctx, gin.H{"group": group})
}

// ClearPageCache drops every cached page at once. There is no finer
// granularity; this is the manual path for making new posts visible on the
// global feed before the TTL runs out.
func (a *AdminController) ClearPageCache(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "administrator access required")
		return
	}

	a.pageCache.ClearAll()
	utils.Success(ctx, gin.H{"message": "page cache cleared"})
}
