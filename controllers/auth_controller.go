package controllers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/middleware"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/utils"
)

const tokenDuration = 72 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)

// AuthController is the local identity provider: register, login, logout,
// and the current-user endpoint.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required,min=6,max=64"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 2-32 characters of letters, digits, '-' or '_'")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		// The unique index wins races the existence check above can lose.
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// Login verifies credentials and issues a JWT, returned in the body for API
// clients and set as a cookie for browser flows.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	ctx.SetCookie(middleware.TokenCookieName, token, int(tokenDuration.Seconds()), "/", "", false, true)
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// LoginPage is the target of unauthenticated redirects. It echoes the
// return path so a client can come back after logging in.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"login": "/api/v1/auth/login",
		"next":  ctx.Query("next"),
	})
}

// Logout invalidates the token by blacklisting it until expiration and
// clears the browser cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ""
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 {
			token = strings.TrimSpace(parts[1])
		}
	} else if cookie, err := ctx.Cookie(middleware.TokenCookieName); err == nil {
		token = strings.TrimSpace(cookie)
	}
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "missing token")
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenDuration)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "is_admin": isAdmin(ctx)})
}
