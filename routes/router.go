package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulse/cache"
	"github.com/pulsefeed/pulse/config"
	"github.com/pulsefeed/pulse/controllers"
	"github.com/pulsefeed/pulse/middleware"
	"github.com/pulsefeed/pulse/services"
	"github.com/pulsefeed/pulse/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The page cache is
// injected so deployments choose Redis or in-process memory.
func SetupRouter(db *gorm.DB, pageCache cache.PageCache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if utils.Logger != nil {
		r.Use(utils.Ginzap(utils.Logger))
		r.Use(utils.RecoveryWithZap(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	feeds := services.NewFeedService(db)
	follows := services.NewFollowService(db)

	feedController := controllers.NewFeedController(db, feeds, follows, pageCache)
	postController := controllers.NewPostController(db)
	profileController := controllers.NewProfileController(db, feeds, follows)
	authController := controllers.NewAuthController(db)
	adminController := controllers.NewAdminController(db, pageCache)

	// JSON API surface.
	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.APIAuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.APIAuthRequired(), authController.Me)

	api.GET("/groups", adminController.ListGroups)
	api.POST("/groups", middleware.APIAuthRequired(), adminController.CreateGroup)
	api.POST("/cache/clear", middleware.APIAuthRequired(), adminController.ClearPageCache)

	// Browser-shaped surface. Unauthenticated mutations redirect to the
	// login page with a return path instead of answering 401.
	r.GET("/", feedController.Index)
	r.GET("/auth/login", authController.LoginPage)
	r.GET("/group/:slug", feedController.GroupFeed)
	r.GET("/new", middleware.PageAuthRequired(), postController.NewPostForm)
	r.POST("/new", middleware.PageAuthRequired(), middleware.RateLimitMiddleware(), postController.CreatePost)
	r.GET("/follow", middleware.PageAuthRequired(), feedController.FollowingFeed)

	r.GET("/:username", middleware.OptionalAuth(), profileController.Profile)
	r.GET("/:username/follow", middleware.PageAuthRequired(), profileController.FollowAuthor)
	r.GET("/:username/unfollow", middleware.PageAuthRequired(), profileController.UnfollowAuthor)
	r.GET("/:username/:postID", postController.PostView)
	r.GET("/:username/:postID/edit", middleware.PageAuthRequired(), postController.EditPostForm)
	r.POST("/:username/:postID/edit", middleware.PageAuthRequired(), middleware.RateLimitMiddleware(), postController.EditPost)
	r.POST("/:username/:postID/comment", middleware.PageAuthRequired(), middleware.RateLimitMiddleware(), postController.AddComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
