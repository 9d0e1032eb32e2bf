package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"helmet-store/cache"
	"helmet-store/metrics"
	"helmet-store/models"
	"helmet-store/store"
	"helmet-store/utils"

	"go.uber.org/zap"
)

const (
	productsCacheKey = "products:all"

	SourceCache = "cache"
	SourceDB    = "db"
)

// CatalogService lists and creates products, serving the list from the cache when warm
type CatalogService struct {
	products store.ProductStore
	cache    cache.Cache
	ttl      time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewCatalogService(products store.ProductStore, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) *CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CatalogService{products: products, cache: c, ttl: ttl, metrics: m, log: log, now: time.Now}
}

// ProductList is a product listing tagged with where it was served from
type ProductList struct {
	Source string           `json:"source"`
	Data   []models.Product `json:"data"`
}

func (s *CatalogService) List(ctx context.Context) (*ProductList, error) {
	if products, ok := s.cached(ctx); ok {
		return &ProductList{Source: SourceCache, Data: products}, nil
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch products", err)
	}
	for i := range products {
		products[i].InStock = products[i].Available()
	}

	if payload, err := json.Marshal(products); err != nil {
		s.log.Warn("failed to encode products for cache", zap.Error(err))
	} else if err := s.cache.Set(ctx, productsCacheKey, payload, s.ttl); err != nil {
		s.log.Warn("failed to set product cache", zap.Error(err))
	}
	return &ProductList{Source: SourceDB, Data: products}, nil
}

func (s *CatalogService) cached(ctx context.Context) ([]models.Product, bool) {
	payload, err := s.cache.Get(ctx, productsCacheKey)
	if errors.Is(err, cache.ErrMiss) {
		s.metrics.CacheLookup("miss")
		return nil, false
	}
	if err != nil {
		s.metrics.CacheLookup("error")
		s.log.Warn("cache unavailable, falling back to store", zap.Error(err))
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		s.metrics.CacheLookup("error")
		s.log.Warn("discarding undecodable product cache entry", zap.Error(err))
		return nil, false
	}
	s.metrics.CacheLookup("hit")
	return products, true
}

// Create inserts a product and invalidates the cached listing
func (s *CatalogService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	now := s.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.products.Create(ctx, product); err != nil {
		return nil, utils.NewInternalError("Failed to create product", err)
	}
	product.InStock = product.Available()

	s.invalidate(ctx)
	return product, nil
}

// Update applies a partial edit to a product, validated like Create, and
// invalidates the cached listing
func (s *CatalogService) Update(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return current, nil
	}
	merged := *current
	update.Apply(&merged)
	if err := validateProduct(&merged); err != nil {
		return nil, err
	}

	product, err := s.products.Update(ctx, id, update, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("Product not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to update product", err)
	}
	product.InStock = product.Available()

	s.invalidate(ctx)
	return product, nil
}

// Delete removes a product and invalidates the cached listing
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return utils.NewNotFoundError("Product not found")
	}
	if err != nil {
		return utils.NewInternalError("Failed to delete product", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, productsCacheKey); err != nil {
		s.log.Warn("failed to clear product cache", zap.Error(err))
	}
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return utils.NewValidationError("Product name is required")
	}
	if p.Price < 0 {
		return utils.NewValidationError("Price must not be negative")
	}
	if p.Stock < 0 {
		return utils.NewValidationError("Stock must not be negative")
	}
	for _, v := range p.Inventory {
		if v.Quantity < 0 {
			return utils.NewValidationError("Inventory quantity must not be negative")
		}
	}
	return nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("Product not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch product", err)
	}
	product.InStock = product.Available()
	return product, nil
}
