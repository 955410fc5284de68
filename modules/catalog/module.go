package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/example/storefront/domain/product"
	"github.com/example/storefront/modules/cache"
)

// Module provides catalog services as a mono module.
type Module struct {
	dbPath     string
	feedConfig FeedConfig
	db         *gorm.DB
	repo       *domain.Repository
	service    *Service
	feed       *FeedClient
	cache      *cache.Cache
}

// NewModule creates a new catalog module.
func NewModule(dbPath string, feedConfig FeedConfig) *Module {
	return &Module{
		dbPath:     dbPath,
		feedConfig: feedConfig,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "catalog"
}

// SetCache wires the cache into the module. Wiring happens after the
// application has started, so the service is created here rather than in
// Start.
func (m *Module) SetCache(c *cache.Cache) {
	m.cache = c
	if m.repo != nil {
		m.service = NewService(m.repo, m.cache)
		m.feed = NewFeedClient(m.feedConfig, m.cache)
	}
}

// Init initializes the database and repository.
func (m *Module) Init(_ mono.ServiceContainer) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	m.db = db
	m.repo = domain.NewRepository(db)

	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("[catalog] Database initialized at %s", m.dbPath)
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[catalog] Module started")
	return nil
}

// Stop stops the module and closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[catalog] Module stopped")
	return nil
}

// GetService returns the catalog service.
func (m *Module) GetService() *Service {
	return m.service
}

// GetFeed returns the external feed client.
func (m *Module) GetFeed() *FeedClient {
	return m.feed
}

// HealthCheck verifies the database connection is healthy.
func (m *Module) HealthCheck(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
