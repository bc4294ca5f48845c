package main

import (
	"github.com/pulsefeed/pulse/cache"
	"github.com/pulsefeed/pulse/config"
	"github.com/pulsefeed/pulse/models"
	"github.com/pulsefeed/pulse/routes"
	"github.com/pulsefeed/pulse/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)

	// Prefer the shared Redis page cache; fall back to process memory when
	// Redis is unreachable so the service still starts.
	var pageCache cache.PageCache
	if utils.RedisAvailable() {
		pageCache = cache.NewRedis(utils.GetRedis(), cache.DefaultTTL)
		utils.Sugar.Info("page cache: redis")
	} else {
		pageCache = cache.NewMemory(cache.DefaultTTL)
		utils.Sugar.Warn("page cache: redis unreachable, using in-process memory")
	}

	r := routes.SetupRouter(db, pageCache)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
