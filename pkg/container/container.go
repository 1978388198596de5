package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/config"
	productHandler "agromarket-backend/internal/domains/product/handler"
	"agromarket-backend/internal/domains/product/parser"
	productRepo "agromarket-backend/internal/domains/product/repository"
	productService "agromarket-backend/internal/domains/product/service"
	infraCache "agromarket-backend/internal/infrastructure/cache"
	"agromarket-backend/internal/infrastructure/database"
	"agromarket-backend/internal/infrastructure/storage"
	"agromarket-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph shared by the api, worker and importer binaries
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       *infraCache.RedisCache
	Storage     *storage.MinIOStorage // nil when MinIO is unreachable at startup
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	ProductRepo   productRepo.ProductRepository
	VariationRepo productRepo.VariationRepository
	ImportRepo    productRepo.ImportRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	ProductCache   productService.CacheInvalidator
	Reconciler     *productService.Reconciler
	ImportService  productService.ImportServiceInterface
	HistoryService productService.HistoryServiceInterface
	CatalogService productService.CatalogServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	ImportHandler *productHandler.ImportHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the graph in dependency order:
// config, infrastructure, repositories, services, handlers
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig lets the CLI override config values before wiring
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}
	log.Info().Str("environment", cfg.App.Environment).Msg("Initializing container")

	// ========================================
	// STEP 1: DATABASE
	// ========================================
	dbConfig, err := cfg.DatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// ========================================
	// STEP 2: CACHE, QUEUE, STORAGE
	// ========================================
	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		// cache misses fall through to Postgres
		log.Warn().Err(err).Msg("Redis connection failed (non-critical)")
	}

	c.AsynqClient = asynq.NewClient(c.RedisClientOpt())

	c.Storage, err = storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		log.Warn().Err(err).Msg("MinIO unavailable, source archival disabled")
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.ProductRepo = productRepo.NewProductRepository(db.Pool)
	c.VariationRepo = productRepo.NewVariationRepository(db.Pool)
	c.ImportRepo = productRepo.NewImportRepository(db.Pool)

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	var hook productService.CompletionHook
	if cfg.Import.MirrorImages {
		hook = productService.NewMirrorScheduler(c.AsynqClient, c.MirroredPrefix())
	}

	c.ProductCache = productService.NewProductCacheInvalidator(c.Cache)
	c.Reconciler = productService.NewReconciler(
		c.ProductRepo,
		c.VariationRepo,
		c.ImportRepo,
		c.ProductCache,
		hook,
		cfg.Import.BatchSize,
	)

	// a nil *MinIOStorage must not become a non-nil interface
	var store productService.ObjectStore
	if c.Storage != nil && cfg.Import.ArchiveSource {
		store = c.Storage
	}

	c.ImportService = productService.NewImportService(c.Reconciler, store, parser.Options{
		MaxRows:     cfg.Import.MaxRows,
		MaxFileSize: cfg.Import.MaxFileSize,
	})
	c.HistoryService = productService.NewHistoryService(c.ImportRepo, c.Cache)
	c.CatalogService = productService.NewCatalogService(c.ProductRepo, c.Cache)

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.ImportHandler = productHandler.NewImportHandler(
		c.ImportService,
		c.HistoryService,
		c.CatalogService,
		cfg.Import.Timeout,
		cfg.Import.MaxFileSize,
	)

	log.Info().Msg("Container initialized")
	return c, nil
}

// ========================================
// HELPER METHODS
// ========================================

// RedisClientOpt is the asynq connection shared by client, server and scheduler
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

// MirroredPrefix is the URL prefix of images already in object storage
func (c *Container) MirroredPrefix() string {
	return storage.PublicBaseURL(c.Config.MinIO)
}

// Cleanup releases connections on shutdown
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("Container cleanup completed")
}
