package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/config"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

// PostController manages post and comment mutations plus the single-post
// read view. Authorship is always taken from the authenticated identity,
// never from client input.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// postFormValues echoes the submitted form state back on validation failure.
type postFormValues struct {
	Text    string `json:"text"`
	GroupID string `json:"group_id"`
}

// postInput is a validated create/edit submission.
type postInput struct {
	Text     string
	GroupID  *uint
	ImageURL string
	HasImage bool
	values   postFormValues
}

// parsePostForm validates a post submission. It returns field errors for
// rejectable input and a non-nil error only for backend faults.
func (p *PostController) parsePostForm(ctx *gin.Context) (*postInput, map[string]string, error) {
	in := &postInput{
		values: postFormValues{
			Text:    ctx.PostForm("text"),
			GroupID: strings.TrimSpace(ctx.PostForm("group")),
		},
	}
	fieldErrs := map[string]string{}

	in.Text = utils.Sanitize(strings.TrimSpace(in.values.Text))
	if in.Text == "" {
		fieldErrs["text"] = "text cannot be empty"
	}

	if in.values.GroupID != "" {
		id, err := strconv.Atoi(in.values.GroupID)
		if err != nil || id < 1 {
			fieldErrs["group"] = "invalid group"
		} else {
			var group models.Group
			if ferr := p.db.First(&group, id).Error; ferr != nil {
				if ferr == gorm.ErrRecordNotFound {
					fieldErrs["group"] = "unknown group"
				} else {
					return nil, nil, ferr
				}
			} else {
				in.GroupID = &group.ID
			}
		}
	}

	// The image hits the disk only once every other field validates, so a
	// rejected submission leaves no orphaned file behind.
	if len(fieldErrs) == 0 {
		if header, err := ctx.FormFile("image"); err == nil && header != nil {
			url, serr := utils.SaveImage(header, config.Get().UploadDir)
			if serr != nil {
				if errors.Is(serr, utils.ErrNotAnImage) {
					fieldErrs["image"] = "uploaded file is not a valid image"
				} else {
					return nil, nil, serr
				}
			} else {
				in.ImageURL = url
				in.HasImage = true
			}
		}
	}

	if len(fieldErrs) > 0 {
		return in, fieldErrs, nil
	}
	return in, nil, nil
}

// findProfilePost resolves /:username/:postID to the profile user and their
// post. It writes a 404 and returns false when either does not exist or the
// post is not authored by that username.
func (p *PostController) findProfilePost(ctx *gin.Context) (*models.User, *models.Post, bool) {
	username := ctx.Param("username")

	var profile models.User
	if err := p.db.Where("username = ?", username).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
			return nil, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load user")
		return nil, nil, false
	}

	postID, err := strconv.Atoi(ctx.Param("postID"))
	if err != nil || postID < 1 {
		utils.Error(ctx, http.StatusNotFound, 40421, "post not found")
		return nil, nil, false
	}

	var post models.Post
	err = p.db.Preload("Author").Preload("Group").
		Where("id = ? AND author_id = ?", postID, profile.ID).
		First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40421, "post not found")
			return nil, nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return nil, nil, false
	}

	return &profile, &post, true
}

func postViewPath(username string, postID uint) string {
	return fmt.Sprintf("/%s/%d", username, postID)
}

// NewPostForm returns the blank create-post form state with the selectable groups.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	var groups []models.Group
	if err := p.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load groups")
		return
	}
	utils.Success(ctx, gin.H{
		"form":   postFormValues{},
		"groups": groups,
	})
}

// CreatePost publishes a new post for the authenticated user and redirects
// to the global feed. The page cache is deliberately left alone: the new
// post appears there after the TTL elapses or an explicit clear.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	in, fieldErrs, err := p.parsePostForm(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to process submission")
		return
	}
	if fieldErrs != nil {
		utils.ValidationFailed(ctx, fieldErrs, in.values)
		return
	}

	post := models.Post{
		AuthorID: userID,
		GroupID:  in.GroupID,
		Text:     in.Text,
		ImageURL: in.ImageURL,
	}
	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to create post")
		return
	}

	ctx.Redirect(http.StatusFound, "/")
}

// PostView returns a single post with its comments.
func (p *PostController) PostView(ctx *gin.Context) {
	_, post, ok := p.findProfilePost(ctx)
	if !ok {
		return
	}

	var comments []models.Comment
	if err := p.db.Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load comments")
		return
	}

	// Attach comment authors in one query instead of per-row preloads.
	if len(comments) > 0 {
		authorIDs := make([]uint, 0, len(comments))
		for _, c := range comments {
			authorIDs = append(authorIDs, c.AuthorID)
		}
		authorIDs = utils.UniqueUint(authorIDs)

		var authors []models.User
		if err := p.db.Find(&authors, authorIDs).Error; err == nil {
			byID := make(map[uint]models.User, len(authors))
			for _, a := range authors {
				byID[a.ID] = a
			}
			for i := range comments {
				if a, ok := byID[comments[i].AuthorID]; ok {
					comments[i].Author = a
				}
			}
		}
	}

	utils.Success(ctx, gin.H{
		"post":     post,
		"comments": comments,
	})
}

// EditPostForm returns the current form state of a post for editing. A
// viewer who is not the post's author is silently redirected to the read
// view instead of seeing an error page.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	username := ctx.Param("username")
	if getUsername(ctx) != username {
		postID, err := strconv.Atoi(ctx.Param("postID"))
		if err != nil || postID < 1 {
			utils.Error(ctx, http.StatusNotFound, 40421, "post not found")
			return
		}
		ctx.Redirect(http.StatusFound, postViewPath(username, uint(postID)))
		return
	}

	_, post, ok := p.findProfilePost(ctx)
	if !ok {
		return
	}

	var groups []models.Group
	if err := p.db.Order("title ASC").Find(&groups).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load groups")
		return
	}

	groupID := ""
	if post.GroupID != nil {
		groupID = strconv.Itoa(int(*post.GroupID))
	}
	utils.Success(ctx, gin.H{
		"form":   postFormValues{Text: post.Text, GroupID: groupID},
		"image":  post.ImageURL,
		"groups": groups,
	})
}

// EditPost updates a post's text, group, and image. The id, author, and
// publication date are preserved. Non-authors are redirected to the read
// view without mutating anything.
func (p *PostController) EditPost(ctx *gin.Context) {
	username := ctx.Param("username")
	if getUsername(ctx) != username {
		postID, err := strconv.Atoi(ctx.Param("postID"))
		if err != nil || postID < 1 {
			utils.Error(ctx, http.StatusNotFound, 40421, "post not found")
			return
		}
		ctx.Redirect(http.StatusFound, postViewPath(username, uint(postID)))
		return
	}

	_, post, ok := p.findProfilePost(ctx)
	if !ok {
		return
	}

	in, fieldErrs, err := p.parsePostForm(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to process submission")
		return
	}
	if fieldErrs != nil {
		utils.ValidationFailed(ctx, fieldErrs, in.values)
		return
	}

	updates := map[string]interface{}{
		"text":     in.Text,
		"group_id": in.GroupID,
	}
	if in.HasImage {
		updates["image_url"] = in.ImageURL
	}
	if err := p.db.Model(post).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	ctx.Redirect(http.StatusFound, postViewPath(username, post.ID))
}

// AddComment attaches a comment by the authenticated user to the post named
// in the URL, then redirects to the post's read view.
func (p *PostController) AddComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	profile, post, found := p.findProfilePost(ctx)
	if !found {
		return
	}

	raw := ctx.PostForm("text")
	text := utils.Sanitize(strings.TrimSpace(raw))
	if text == "" {
		utils.ValidationFailed(ctx, map[string]string{"text": "text cannot be empty"}, gin.H{"text": raw})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     text,
	}
	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to create comment")
		return
	}

	ctx.Redirect(http.StatusFound, postViewPath(profile.Username, post.ID))
}
