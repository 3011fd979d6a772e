// Package app assembles repositories and services for the HTTP gateway and the CLI.
package app

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/cronograma-api/internal/repository"
	"github.com/noah-isme/cronograma-api/internal/service"
	"github.com/noah-isme/cronograma-api/pkg/cache"
	"github.com/noah-isme/cronograma-api/pkg/config"
	"github.com/noah-isme/cronograma-api/pkg/database"
	"github.com/noah-isme/cronograma-api/pkg/storage"
)

// App holds the wired dependencies of one process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Cache    *repository.CacheRepository
	Metrics  *service.MetricsService
	Files    *storage.LocalStorage
	Importer *service.ScheduleImportService
	Rules    *service.PlanRulesService
}

// Open connects to PostgreSQL and, when the verdict cache is enabled, to Redis. An
// unreachable Redis only disables caching.
func Open(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}

	var client *redis.Client
	if cfg.Rules.CacheEnabled {
		client, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, rule cache disabled", zap.Error(err))
			client = nil
		}
	}

	a, err := New(cfg, logger, db, client)
	if err != nil {
		_ = db.Close()
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}
	return a, nil
}

// New wires repositories and services over existing connections. client may be nil.
func New(cfg *config.Config, logger *zap.Logger, db *sqlx.DB, client *redis.Client) (*App, error) {
	files, err := storage.NewLocalStorage(cfg.Import.BaseDir)
	if err != nil {
		return nil, err
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(client, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Rules.CacheTTL, logger, cfg.Rules.CacheEnabled && client != nil)

	courses := repository.NewCourseRepository(db)
	sources := repository.NewCourseSourceRepository(db)

	importer := service.NewScheduleImportService(courses, sources, db, files, cacheSvc, metrics, logger, service.ScheduleImportConfig{
		SheetName:           cfg.Import.SheetName,
		AllowedOrientations: cfg.Import.AllowedOrientations,
		ElectiveTypes:       cfg.Rules.ElectiveTypes,
	})

	rules := service.NewPlanRulesService(
		repository.NewStudentRepository(db),
		repository.NewPlanRepository(db),
		repository.NewEnrollmentRepository(db),
		sources,
		cacheSvc,
		metrics,
		logger,
		service.PlanRulesConfig{
			ElectiveTypes:        cfg.Rules.ElectiveTypes,
			RequiredTypes:        cfg.Rules.RequiredTypes,
			ElectiveTarget:       cfg.Rules.ElectiveTarget,
			OrientationThreshold: cfg.Rules.OrientationThreshold,
			OrientationScope:     cfg.Rules.OrientationScope,
			CacheTTL:             cfg.Rules.CacheTTL,
		},
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Cache:    cacheRepo,
		Metrics:  metrics,
		Files:    files,
		Importer: importer,
		Rules:    rules,
	}, nil
}

// Close releases the database and cache connections.
func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn("close cache", zap.Error(err))
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Warn("close database", zap.Error(err))
	}
}
