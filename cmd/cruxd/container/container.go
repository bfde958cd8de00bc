package container

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cruxdb/cruxd/cmd/cruxd/repository"
	"github.com/cruxdb/cruxd/cmd/cruxd/service"
	"github.com/cruxdb/cruxd/common/bootstrap"
	"github.com/cruxdb/cruxd/common/cache"
	rediscommon "github.com/cruxdb/cruxd/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client

	// Repositories
	AreaRepo      *repository.AreaRepository
	ClimbRepo     *repository.ClimbRepository
	ChangelogRepo *repository.ChangelogRepository
	EventRepo     *repository.EventRepository

	// Services
	AreaService      *service.AreaService
	ClimbService     *service.ClimbService
	ChangeLogService *service.ChangeLogService
	ImportService    *service.BulkImportService
	StatsService     *service.StatsService
	FeedService      *service.FeedService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)

	// Initialize repositories
	areaRepo := repository.NewAreaRepository(components.DB)
	climbRepo := repository.NewClimbRepository(components.DB)
	changelogRepo := repository.NewChangelogRepository(components.DB)
	eventRepo := repository.NewEventRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	areaService := service.NewAreaService(
		components.DB.Pool,
		components.DB,
		areaRepo,
		climbRepo,
		changelogRepo,
		components.Logger,
	)
	if cfg.Cache.Enabled {
		// Shared Redis cache when available so replicas see the same
		// invalidations; the in-process cache otherwise.
		areaCache := components.Cache
		if cfg.Redis.Host != "" {
			areaCache = cache.NewRedisCache(redisRaw, "area-cache", components.Logger)
		}
		areaService = areaService.WithCache(areaCache, cfg.Cache.DefaultTTL)
	}

	climbService := service.NewClimbService(
		components.DB.Pool,
		components.DB,
		areaRepo,
		climbRepo,
		changelogRepo,
		components.Logger,
	)

	changeLogService := service.NewChangeLogService(
		components.DB.Pool,
		changelogRepo,
		components.Logger,
	)

	importService := service.NewBulkImportService(
		components.DB,
		areaService,
		climbService,
		changelogRepo,
		components.Logger,
	)

	statsService := service.NewStatsService(
		components.DB.Pool,
		areaRepo,
		climbRepo,
		cfg.Stats.Concurrency,
		components.Logger,
	)

	feedService, err := service.NewFeedService(
		components.DB.Pool,
		eventRepo,
		changeLogService,
		components.Queue,
		redisClient,
		cfg.Feed,
		components.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create feed service: %w", err)
	}

	return &Container{
		Components:       components,
		Redis:            redisClient,
		AreaRepo:         areaRepo,
		ClimbRepo:        climbRepo,
		ChangelogRepo:    changelogRepo,
		EventRepo:        eventRepo,
		AreaService:      areaService,
		ClimbService:     climbService,
		ChangeLogService: changeLogService,
		ImportService:    importService,
		StatsService:     statsService,
		FeedService:      feedService,
	}, nil
}
