package catalog

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	domain "github.com/example/storefront/domain/product"
	"github.com/example/storefront/modules/cache"
)

const (
	listCacheKey   = "products:all"
	itemCacheKeyFn = "products:%d"
)

// Service provides catalog operations with a cache-aside layer on reads.
// Writes go straight to the database and invalidate the affected keys.
type Service struct {
	repo  *domain.Repository
	cache *cache.Cache
	group singleflight.Group
}

// NewService creates a new catalog service.
func NewService(repo *domain.Repository, c *cache.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: c,
	}
}

// Create creates a new product and invalidates the list cache.
func (s *Service) Create(ctx context.Context, req *domain.CreateProductRequest) (*domain.Product, error) {
	product := &domain.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return product, nil
}

// GetByID retrieves a product, serving from cache when possible.
// Returns nil when the product does not exist.
func (s *Service) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	key := fmt.Sprintf(itemCacheKeyFn, id)

	var cached domain.Product
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[catalog] cache read failed for %s: %v", key, err)
	}
	if found {
		return &cached, nil
	}

	// Collapse concurrent misses for the same product into one DB read.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		product, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product != nil {
			if err := s.cache.Set(ctx, key, product); err != nil {
				log.Printf("[catalog] cache write failed for %s: %v", key, err)
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// List retrieves all products newest first, serving from cache when possible.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	var cached []domain.Product
	found, err := s.cache.Get(ctx, listCacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] cache read failed for %s: %v", listCacheKey, err)
	}
	if found {
		return cached, nil
	}

	v, err, _ := s.group.Do(listCacheKey, func() (interface{}, error) {
		products, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, listCacheKey, products); err != nil {
			log.Printf("[catalog] cache write failed for %s: %v", listCacheKey, err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// Update applies the non-nil fields of req to an existing product and
// invalidates both the item and list caches. Returns nil when not found.
func (s *Service) Update(ctx context.Context, id uint, req *domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return product, nil
}

// Delete removes a product and invalidates its caches.
// Returns false when the product did not exist.
func (s *Service) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx, id)
	}
	return deleted, nil
}

// CacheStats returns the underlying cache statistics.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.GetStats()
}

func (s *Service) invalidate(ctx context.Context, id uint) {
	key := fmt.Sprintf(itemCacheKeyFn, id)
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("[catalog] cache invalidation failed for %s: %v", key, err)
	}
	s.invalidateList(ctx)
}

func (s *Service) invalidateList(ctx context.Context) {
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		log.Printf("[catalog] cache invalidation failed for %s: %v", listCacheKey, err)
	}
}
